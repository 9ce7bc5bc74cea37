package main

// @title Water Billing Ledger API
// @version 1.0
// @description Abonent accounts, accruals, payments, debt collection and bank reconciliation for a water utility.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	Execute()
}
