package services

import (
	"errors"
	"time"

	"github.com/fencerow/fencerow/internal/models"
	"github.com/fencerow/fencerow/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrGrantNotFound     = errors.New("access request not found")
	ErrNotFieldOwner     = errors.New("you do not own this field")
	ErrNotGrantParty     = errors.New("you are not a party to this access request")
	ErrInvalidGrantState = errors.New("access request is not in a state that allows this transition")
	ErrSelfRequest       = errors.New("cannot request access to your own field")
)

// VisibilityLevel is how much of a field a given viewer may see.
type VisibilityLevel string

const (
	VisibilityOwner      VisibilityLevel = "owner"
	VisibilityApproved   VisibilityLevel = "approved"
	VisibilityRestricted VisibilityLevel = "restricted"
)

// AccessService owns the grant state machine:
//
//	pending -> approved | denied
//	approved -> revoked
//
// Denied and revoked are terminal for the grant itself, but not for the
// pair: a fresh request creates a new pending grant.
type AccessService struct {
	grantRepo *repository.GrantRepository
	fieldRepo *repository.FieldRepository
	userRepo  *repository.UserRepository
	db        *gorm.DB
}

func NewAccessService(
	grantRepo *repository.GrantRepository,
	fieldRepo *repository.FieldRepository,
	userRepo *repository.UserRepository,
	db *gorm.DB,
) *AccessService {
	return &AccessService{
		grantRepo: grantRepo,
		fieldRepo: fieldRepo,
		userRepo:  userRepo,
		db:        db,
	}
}

// RequestAccess files a pending grant for (ownerFieldID, viewer). If an
// active grant already occupies the pair the existing one is returned
// unchanged, so repeated requests cannot spam the owner.
func (s *AccessService) RequestAccess(viewerUsername string, ownerFieldID uint, viewerFieldID *uint) (*models.AccessGrant, error) {
	viewer, err := s.userRepo.GetOrCreate(viewerUsername)
	if err != nil {
		return nil, err
	}

	field, err := s.fieldRepo.FindByID(ownerFieldID)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, ErrFieldNotFound
	}
	if field.OwnerID == viewer.ID {
		return nil, ErrSelfRequest
	}

	if viewerFieldID != nil {
		viewerField, err := s.fieldRepo.FindByID(*viewerFieldID)
		if err != nil {
			return nil, err
		}
		if viewerField == nil {
			return nil, ErrFieldNotFound
		}
		if viewerField.OwnerID != viewer.ID {
			return nil, ErrNotFieldOwner
		}
	}

	var grant *models.AccessGrant
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.grantRepo.FindActiveForPair(tx, ownerFieldID, viewer.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			grant = existing
			return nil
		}

		grant = &models.AccessGrant{
			OwnerFieldID:  ownerFieldID,
			ViewerUserID:  viewer.ID,
			ViewerFieldID: viewerFieldID,
			Status:        models.GrantStatusPending,
		}
		return s.grantRepo.Create(tx, grant)
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// Decide transitions a pending grant to approved or denied. Only the
// owner of the target field may decide.
func (s *AccessService) Decide(ownerUsername string, grantID uint, approve bool) (*models.AccessGrant, error) {
	owner, err := s.userRepo.GetOrCreate(ownerUsername)
	if err != nil {
		return nil, err
	}

	var decided *models.AccessGrant
	err = s.db.Transaction(func(tx *gorm.DB) error {
		grant, err := s.grantRepo.FindByIDForUpdate(tx, grantID)
		if err != nil {
			return err
		}
		if grant == nil {
			return ErrGrantNotFound
		}
		if grant.OwnerField.OwnerID != owner.ID {
			return ErrNotFieldOwner
		}
		if grant.Status != models.GrantStatusPending {
			return ErrInvalidGrantState
		}

		if approve {
			grant.Status = models.GrantStatusApproved
		} else {
			grant.Status = models.GrantStatusDenied
		}
		now := time.Now()
		grant.DecidedAt = &now

		decided = grant
		return s.grantRepo.UpdateInTx(tx, grant)
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// Revoke moves an approved grant to revoked. Either party may revoke.
func (s *AccessService) Revoke(username string, grantID uint) (*models.AccessGrant, error) {
	user, err := s.userRepo.GetOrCreate(username)
	if err != nil {
		return nil, err
	}

	var revoked *models.AccessGrant
	err = s.db.Transaction(func(tx *gorm.DB) error {
		grant, err := s.grantRepo.FindByIDForUpdate(tx, grantID)
		if err != nil {
			return err
		}
		if grant == nil {
			return ErrGrantNotFound
		}
		if grant.OwnerField.OwnerID != user.ID && grant.ViewerUserID != user.ID {
			return ErrNotGrantParty
		}
		if grant.Status != models.GrantStatusApproved {
			return ErrInvalidGrantState
		}

		grant.Status = models.GrantStatusRevoked
		now := time.Now()
		grant.DecidedAt = &now

		revoked = grant
		return s.grantRepo.UpdateInTx(tx, grant)
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

// ResolveVisibility decides how much of a field the viewer may see.
func (s *AccessService) ResolveVisibility(viewerUsername string, field *models.Field) (VisibilityLevel, error) {
	viewer, err := s.userRepo.GetOrCreate(viewerUsername)
	if err != nil {
		return VisibilityRestricted, err
	}

	if field.OwnerID == viewer.ID {
		return VisibilityOwner, nil
	}

	approved, err := s.grantRepo.HasApprovedForViewer(field.ID, viewer.ID)
	if err != nil {
		return VisibilityRestricted, err
	}
	if approved {
		return VisibilityApproved, nil
	}
	return VisibilityRestricted, nil
}

func (s *AccessService) ListIncoming(username string) ([]models.AccessGrant, error) {
	user, err := s.userRepo.GetOrCreate(username)
	if err != nil {
		return nil, err
	}

	owned, err := s.fieldRepo.FindByOwnerID(user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(owned))
	for i, f := range owned {
		ids[i] = f.ID
	}
	return s.grantRepo.FindIncoming(ids)
}

func (s *AccessService) ListOutgoing(username string) ([]models.AccessGrant, error) {
	user, err := s.userRepo.GetOrCreate(username)
	if err != nil {
		return nil, err
	}
	return s.grantRepo.FindOutgoing(user.ID)
}
