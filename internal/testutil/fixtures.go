// Package testutil provides fixtures shared by the engine, harness, store
// and CLI tests.
package testutil

import (
	"github.com/roach88/bto/internal/domain"
)

// NRICs of the sample users.
const (
	SingleApplicant  = "S1234567A" // John, 35, single
	MarriedApplicant = "T7654321B" // Sarah, 40, married
	YoungApplicant   = "S9876543C" // Grace, 30, married
	YoungSingle      = "S2345678F" // Ben, 30, single
	Officer          = "T2109876H" // Daniel, 36, single
	SecondOfficer    = "S6543210I" // Emily, 28, single
	Manager          = "T8765432F" // Michael, 36, single, runs Acacia
	SecondManager    = "S5678901G" // Jessica, 26, married, runs Birch
	FreshManager     = "S3456789D" // Rachel, 41, single, no project yet
)

// Project names of the sample projects.
const (
	Acacia = "Acacia Breeze" // 2-Room and 3-Room, managed by Manager
	Birch  = "Birch Grove"   // 3-Room only, managed by SecondManager
)

// Users returns the sample users.
func Users() []domain.User {
	return []domain.User{
		{NRIC: SingleApplicant, Name: "John", Age: 35, MaritalStatus: domain.Single, Role: domain.RoleApplicant},
		{NRIC: MarriedApplicant, Name: "Sarah", Age: 40, MaritalStatus: domain.Married, Role: domain.RoleApplicant},
		{NRIC: YoungApplicant, Name: "Grace", Age: 30, MaritalStatus: domain.Married, Role: domain.RoleApplicant},
		{NRIC: YoungSingle, Name: "Ben", Age: 30, MaritalStatus: domain.Single, Role: domain.RoleApplicant},
		{NRIC: Officer, Name: "Daniel", Age: 36, MaritalStatus: domain.Single, Role: domain.RoleOfficer},
		{NRIC: SecondOfficer, Name: "Emily", Age: 28, MaritalStatus: domain.Single, Role: domain.RoleOfficer},
		{NRIC: Manager, Name: "Michael", Age: 36, MaritalStatus: domain.Single, Role: domain.RoleManager, AssignedProject: Acacia},
		{NRIC: SecondManager, Name: "Jessica", Age: 26, MaritalStatus: domain.Married, Role: domain.RoleManager, AssignedProject: Birch},
		{NRIC: FreshManager, Name: "Rachel", Age: 41, MaritalStatus: domain.Single, Role: domain.RoleManager},
	}
}

// FlatType returns a fully available flat type.
func FlatType(label string, units int, price int64) domain.FlatType {
	return domain.FlatType{Label: label, TotalUnits: units, RemainingUnits: units, Price: price}
}

// Project returns a visible project open from Day(openDay) to Day(closeDay).
func Project(name, manager string, openDay, closeDay, maxOfficers int, flats ...domain.FlatType) domain.Project {
	p := domain.Project{
		Name:            name,
		Neighborhood:    "Yishun",
		OpenDate:        Day(openDay),
		CloseDate:       Day(closeDay),
		Visible:         true,
		ManagerNRIC:     manager,
		MaxOfficerSlots: maxOfficers,
		FlatTypes:       make(map[string]domain.FlatType, len(flats)),
	}
	for _, ft := range flats {
		p.FlatTypes[ft.Label] = ft
	}
	return p
}

// Snapshot returns the sample state: the sample users, Acacia (2 two-room
// and 3 three-room units, 2 officer slots) and Birch (3 three-room units,
// 1 officer slot), no applications and no registrations.
func Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Users: Users(),
		Projects: []domain.Project{
			Project(Acacia, Manager, -1, 30, 2,
				FlatType(domain.TwoRoom, 2, 350000),
				FlatType(domain.ThreeRoom, 3, 450000)),
			Project(Birch, SecondManager, -10, 20, 1,
				FlatType(domain.ThreeRoom, 3, 400000)),
		},
	}
}
