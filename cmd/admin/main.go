package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"caredesk/backend/internal/assignment"
	"caredesk/backend/internal/config"
	"caredesk/backend/internal/escalation"
	"caredesk/backend/internal/lifecycle"
	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil, nil) // No redis needed for admin CLI
	resolver := assignment.NewResolver(storageSvc)
	lc := lifecycle.NewService(storageSvc, resolver, nil, nil)
	sweeper := escalation.NewSweeper(storageSvc, lc, resolver, nil, nil)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: seed | set-threshold <department_id> <hours> | sweep | escalate <complaint_id>")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "seed":
		if err := seed(db); err != nil {
			log.Fatalf("Error seeding: %v", err)
		}
		fmt.Println("Seed data created.")
	case "set-threshold":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-threshold <department_id> <hours>")
			os.Exit(1)
		}
		hours, err := strconv.Atoi(os.Args[3])
		if err != nil || hours <= 0 {
			fmt.Println("Invalid hours. Please provide a positive integer.")
			os.Exit(1)
		}
		if err := setThreshold(storageSvc, os.Args[2], hours); err != nil {
			log.Fatalf("Error setting threshold: %v", err)
		}
		fmt.Printf("Escalation threshold for %s set to %d hours.\n", os.Args[2], hours)
	case "sweep":
		if err := sweeper.RunOnce(context.Background()); err != nil {
			log.Fatalf("Error running sweep: %v", err)
		}
		fmt.Println("Escalation sweep complete.")
	case "escalate":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin escalate <complaint_id>")
			os.Exit(1)
		}
		if err := escalateNow(storageSvc, sweeper, os.Args[2]); err != nil {
			log.Fatalf("Error escalating complaint: %v", err)
		}
		fmt.Printf("Complaint %s has been escalated.\n", os.Args[2])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func seed(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.Complaint{},
		&models.TimelineEvent{},
		&models.Attachment{},
	)
	if err != nil {
		return err
	}

	departments := []models.Department{
		{Name: "Emergency", EscalationHours: 24},
		{Name: "Cardiology", EscalationHours: 72},
		{Name: "Radiology", EscalationHours: 72},
	}
	for i := range departments {
		if err := db.Where("name = ?", departments[i].Name).
			FirstOrCreate(&departments[i]).Error; err != nil {
			return err
		}
	}

	users := []models.User{
		{Name: "System Administrator", Email: "admin@caredesk.local", Role: models.RoleAdmin, Active: true},
		{Name: "Emergency Staff", Email: "er.staff@caredesk.local", Role: models.RoleStaff, DepartmentID: departments[0].ID, Active: true},
		{Name: "Emergency Supervisor", Email: "er.supervisor@caredesk.local", Role: models.RoleSupervisor, DepartmentID: departments[0].ID, Active: true},
		{Name: "Emergency Manager", Email: "er.manager@caredesk.local", Role: models.RoleManager, DepartmentID: departments[0].ID, Active: true},
		{Name: "Test Patient", Email: "patient@caredesk.local", Role: models.RolePatient, Active: true},
	}
	for i := range users {
		if err := db.Where("email = ?", users[i].Email).
			FirstOrCreate(&users[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func setThreshold(s storage.Storage, departmentID string, hours int) error {
	dept, err := s.GetDepartmentByID(departmentID)
	if err != nil {
		return err
	}
	if dept == nil {
		return fmt.Errorf("department %s not found", departmentID)
	}
	dept.EscalationHours = hours
	return s.SaveDepartment(dept)
}

// escalateNow is the manual re-escalation path. It reuses the sweeper's
// resolve/reassign/transition sequence, so a complaint already escalated
// once can be pushed another tier by an operator.
func escalateNow(s storage.Storage, sweeper *escalation.Sweeper, complaintID string) error {
	c, err := s.GetComplaintByID(complaintID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("complaint %s not found", complaintID)
	}
	if c.Status.Terminal() {
		return fmt.Errorf("complaint %s is already %s", complaintID, c.Status)
	}
	return sweeper.Escalate(c, config.SystemActorID, "escalated manually by an operator")
}
