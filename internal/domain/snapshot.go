package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// DomainSnapshot is the domain-separation prefix for snapshot digests.
// The version suffix allows the digest algorithm to change later.
const DomainSnapshot = "bto/snapshot/v1"

// Snapshot is the full serialisable state of the engine.
// Slices are sorted by primary key so that equal states compare equal.
type Snapshot struct {
	Users         []User                `json:"users"`
	Projects      []Project             `json:"projects"`
	Applications  []Application         `json:"applications"`
	Registrations []OfficerRegistration `json:"registrations"`
}

// Sort orders every slice by its primary key.
func (s *Snapshot) Sort() {
	sort.Slice(s.Users, func(i, j int) bool { return s.Users[i].NRIC < s.Users[j].NRIC })
	sort.Slice(s.Projects, func(i, j int) bool { return s.Projects[i].Name < s.Projects[j].Name })
	sort.Slice(s.Applications, func(i, j int) bool {
		return s.Applications[i].ApplicantNRIC < s.Applications[j].ApplicantNRIC
	})
	sort.Slice(s.Registrations, func(i, j int) bool {
		a, b := s.Registrations[i], s.Registrations[j]
		if a.OfficerNRIC != b.OfficerNRIC {
			return a.OfficerNRIC < b.OfficerNRIC
		}
		return a.ProjectName < b.ProjectName
	})
}

// Digest returns a hex SHA-256 of the snapshot's canonical JSON with domain
// separation: SHA256(DomainSnapshot + 0x00 + canonical). Two snapshots with
// the same content have the same digest regardless of slice order.
func (s Snapshot) Digest() (string, error) {
	cp := s
	cp.Users = append([]User(nil), s.Users...)
	cp.Projects = append([]Project(nil), s.Projects...)
	cp.Applications = append([]Application(nil), s.Applications...)
	cp.Registrations = append([]OfficerRegistration(nil), s.Registrations...)
	cp.Sort()

	canonical, err := MarshalCanonical(cp.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s Snapshot) canonicalMap() map[string]any {
	users := make([]any, len(s.Users))
	for i, u := range s.Users {
		users[i] = map[string]any{
			"nric":             u.NRIC,
			"name":             u.Name,
			"age":              u.Age,
			"marital_status":   string(u.MaritalStatus),
			"role":             string(u.Role),
			"assigned_project": u.AssignedProject,
		}
	}

	projects := make([]any, len(s.Projects))
	for i, p := range s.Projects {
		flats := make(map[string]any, len(p.FlatTypes))
		for label, ft := range p.FlatTypes {
			flats[label] = map[string]any{
				"total_units":     ft.TotalUnits,
				"remaining_units": ft.RemainingUnits,
				"price":           ft.Price,
			}
		}
		officers := p.Officers
		if officers == nil {
			officers = []string{}
		}
		projects[i] = map[string]any{
			"name":              p.Name,
			"neighborhood":      p.Neighborhood,
			"open_date":         p.OpenDate.Format(DateLayout),
			"close_date":        p.CloseDate.Format(DateLayout),
			"visible":           p.Visible,
			"manager_nric":      p.ManagerNRIC,
			"max_officer_slots": p.MaxOfficerSlots,
			"officer_slots":     p.OfficerSlots,
			"officers":          officers,
			"flat_types":        flats,
		}
	}

	apps := make([]any, len(s.Applications))
	for i, a := range s.Applications {
		apps[i] = map[string]any{
			"applicant_nric":  a.ApplicantNRIC,
			"project_name":    a.ProjectName,
			"flat_type":       a.FlatType,
			"status":          string(a.Status),
			"previous_status": string(a.PreviousStatus),
			"unit_held":       a.UnitHeld,
		}
	}

	regs := make([]any, len(s.Registrations))
	for i, r := range s.Registrations {
		regs[i] = map[string]any{
			"officer_nric": r.OfficerNRIC,
			"project_name": r.ProjectName,
			"status":       string(r.Status),
		}
	}

	return map[string]any{
		"users":         users,
		"projects":      projects,
		"applications":  apps,
		"registrations": regs,
	}
}
