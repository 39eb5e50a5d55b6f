package services

import (
	"fmt"
	"math"
	"time"

	"github.com/fencerow/fencerow/internal/geometry"
	"github.com/fencerow/fencerow/internal/models"
	"github.com/paulmach/orb"
)

// FieldView is the projection of a field for one viewer. Level says
// which variant it is; handlers serialize it as-is and never look at
// the raw model, so the sanitization cannot be bypassed at the edge.
//
// Owner sees everything. Approved sees everything except Notes, which
// never leave the owner. Restricted sees a placeholder name and a
// coarsened boundary, enough to draw the shape for spray awareness and
// nothing more.
type FieldView struct {
	Level       VisibilityLevel `json:"visibility"`
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Boundary    string          `json:"boundary"`
	CentroidLat float64         `json:"centroid_lat"`
	CentroidLng float64         `json:"centroid_lng"`

	OwnerUsername string `json:"owner,omitempty"`

	Crop        string     `json:"crop,omitempty"`
	Variety     string     `json:"variety,omitempty"`
	SprayType   string     `json:"spray_type,omitempty"`
	Status      string     `json:"status,omitempty"`
	Acres       float64    `json:"acres,omitempty"`
	Season      string     `json:"season,omitempty"`
	PlantedAt   *time.Time `json:"planted_at,omitempty"`
	HarvestedAt *time.Time `json:"harvested_at,omitempty"`

	Notes string `json:"notes,omitempty"`

	// DistanceMeters is set on adjacency listings, zero elsewhere.
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// ProjectField builds the view for a resolved visibility level.
func ProjectField(field *models.Field, level VisibilityLevel) FieldView {
	view := FieldView{
		Level:       level,
		ID:          field.ID,
		Boundary:    field.Boundary,
		CentroidLat: field.CentroidLat,
		CentroidLng: field.CentroidLng,
	}

	switch level {
	case VisibilityOwner:
		view.Notes = field.Notes
		fallthrough
	case VisibilityApproved:
		view.Name = field.Name
		view.OwnerUsername = field.Owner.Username
		view.Crop = field.Crop
		view.Variety = field.Variety
		view.SprayType = field.SprayType
		view.Status = string(field.Status)
		view.Acres = field.Acres
		view.Season = field.Season
		view.PlantedAt = field.PlantedAt
		view.HarvestedAt = field.HarvestedAt
	default:
		view.Name = fmt.Sprintf("Field #%d", field.ID)
		view.Boundary = approximateBoundary(field.Boundary)
	}
	return view
}

// approximateBoundary rounds boundary coordinates to 4 decimal places
// (roughly 11 m), keeping the shape drawable without handing out a
// survey-grade outline. Falls back to the stored boundary if it does
// not parse, which only happens for legacy rows.
func approximateBoundary(boundary string) string {
	ring, err := geometry.ParseBoundary([]byte(boundary))
	if err != nil {
		return boundary
	}

	rounded := make(orb.Ring, len(ring))
	for i, p := range ring {
		rounded[i] = orb.Point{roundCoord(p[0]), roundCoord(p[1])}
	}
	data, err := geometry.MarshalBoundary(rounded)
	if err != nil {
		return boundary
	}
	return string(data)
}

func roundCoord(v float64) float64 {
	return math.Round(v*10000) / 10000
}
