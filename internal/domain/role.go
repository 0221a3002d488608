package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

type Permission string

const (
	PermViewKnowledgeBases  Permission = "VIEW_KNOWLEDGE_BASES"
	PermCreateKnowledgeBase Permission = "CREATE_KNOWLEDGE_BASE"
	PermUpdateKnowledgeBase Permission = "UPDATE_KNOWLEDGE_BASE"
	PermDeleteKnowledgeBase Permission = "DELETE_KNOWLEDGE_BASE"
	PermViewDocuments       Permission = "VIEW_DOCUMENTS"
	PermUploadDocument      Permission = "UPLOAD_DOCUMENT"
	PermDeleteDocument      Permission = "DELETE_DOCUMENT"
	PermViewQuestions       Permission = "VIEW_QUESTIONS"
	PermCreateQuestion      Permission = "CREATE_QUESTION"
	PermDeleteQuestion      Permission = "DELETE_QUESTION"
	PermConverse            Permission = "CONVERSE_WITH_KNOWLEDGE_BASE"
)

var rolePermissions = map[Permission][]Role{
	PermViewKnowledgeBases:  {RoleUser, RoleOwner, RoleAdmin},
	PermCreateKnowledgeBase: {RoleOwner, RoleAdmin},
	PermUpdateKnowledgeBase: {RoleOwner, RoleAdmin},
	PermDeleteKnowledgeBase: {RoleOwner, RoleAdmin},
	PermViewDocuments:       {RoleOwner, RoleAdmin},
	PermUploadDocument:      {RoleOwner, RoleAdmin},
	PermDeleteDocument:      {RoleOwner, RoleAdmin},
	PermViewQuestions:       {RoleUser, RoleOwner, RoleAdmin},
	PermCreateQuestion:      {RoleOwner, RoleAdmin},
	PermDeleteQuestion:      {RoleOwner, RoleAdmin},
	PermConverse:            {RoleUser, RoleOwner, RoleAdmin},
}

// Has reports whether the role carries the permission. Unknown permissions
// are denied.
func (r Role) Has(p Permission) bool {
	for _, allowed := range rolePermissions[p] {
		if allowed == r {
			return true
		}
	}
	return false
}

// User is the profile fetched once per session; only the role matters to
// the client.
type User struct {
	ID        string
	Email     string
	FullName  string
	Role      Role
	CreatedAt time.Time
}
