// Command token mints an access token for local testing, since login is
// handled by the identity provider in front of the API.
//
//	go run ./cmd/token -employee emp-1 -role employee
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/config"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
)

func main() {
	employeeID := flag.String("employee", "", "employee id carried in the token")
	role := flag.String("role", string(user.RoleEmployee), "employee, team_manager, sdm or hr")
	userID := flag.String("user", "", "user id; defaults to the employee id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	if *userID == "" {
		*userID = *employeeID
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(user.Actor{
		UserID:     *userID,
		EmployeeID: *employeeID,
		Role:       user.Role(*role),
	})
	if err != nil {
		log.Fatal("Failed to generate token: ", err)
	}

	fmt.Println(token)
	log.Printf("expires at %s", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
