package main

// @title           Fencerow API
// @version         1.0
// @description     Field adjacency and spray coordination service
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token
func main() {
	Execute()
}
