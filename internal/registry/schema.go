package registry

import (
	"github.com/hashicorp/go-memdb"
)

// Table names.
const (
	TableUsers         = "users"
	TableProjects      = "projects"
	TableApplications  = "applications"
	TableRegistrations = "registrations"
)

// Index names. Every table has an "id" primary index.
const (
	indexID            = "id"
	indexRole          = "role"
	indexManager       = "manager"
	indexVisible       = "visible"
	indexProject       = "project"
	indexProjectStatus = "project_status"
	indexOfficer       = "officer"
)

// Schema returns the go-memdb schema for the engine's four registries.
//
// Records are stored as pointers to domain values. The "id" index is the
// natural key: NRIC for users and applications (an applicant holds at most
// one application record), project name for projects and the
// (officer, project) pair for registrations.
func Schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			TableUsers: {
				Name: TableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "NRIC"},
					},
					indexRole: {
						Name:    indexRole,
						Indexer: &memdb.StringFieldIndex{Field: "Role"},
					},
				},
			},
			TableProjects: {
				Name: TableProjects,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					indexManager: {
						Name:         indexManager,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "ManagerNRIC"},
					},
					indexVisible: {
						Name:    indexVisible,
						Indexer: &memdb.BoolFieldIndex{Field: "Visible"},
					},
				},
			},
			TableApplications: {
				Name: TableApplications,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ApplicantNRIC"},
					},
					indexProject: {
						Name:    indexProject,
						Indexer: &memdb.StringFieldIndex{Field: "ProjectName"},
					},
					indexProjectStatus: {
						Name: indexProjectStatus,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "ProjectName"},
								&memdb.StringFieldIndex{Field: "Status"},
							},
						},
					},
				},
			},
			TableRegistrations: {
				Name: TableRegistrations,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:   indexID,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "OfficerNRIC"},
								&memdb.StringFieldIndex{Field: "ProjectName"},
							},
						},
					},
					indexOfficer: {
						Name:    indexOfficer,
						Indexer: &memdb.StringFieldIndex{Field: "OfficerNRIC"},
					},
					indexProject: {
						Name:    indexProject,
						Indexer: &memdb.StringFieldIndex{Field: "ProjectName"},
					},
				},
			},
		},
	}
}
