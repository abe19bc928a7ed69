package mockapi

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// User is a member of the user collection.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser is the body accepted when creating or replacing a user.
type NewUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUser is the body accepted by PATCH; absent fields are kept.
type UpdateUser struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// Report is a downloadable document.
type Report struct {
	Filename    string
	ContentType string
	Blob        []byte
}

// Store holds the API's state in memory.
type Store struct {
	mu       sync.RWMutex
	nextID   int
	users    map[int]User
	reports  map[string]Report
	sessions map[string]string
}

// NewStore returns a Store seeded with one user and two reports.
func NewStore() *Store {
	s := Store{
		nextID:   2,
		users:    map[int]User{1: {ID: 1, Name: "alice", Email: "alice@example.com"}},
		sessions: make(map[string]string),
		reports: map[string]Report{
			"q3": {
				Filename:    "q3 report.pdf",
				ContentType: "application/pdf",
				Blob:        []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"),
			},
			"export": {
				Filename:    "export.csv",
				ContentType: "text/csv",
				Blob:        []byte("id,name,email\n1,alice,alice@example.com\n"),
			},
		},
	}

	return &s
}

// Users returns every user ordered by id.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b User) int { return cmp.Compare(a.ID, b.ID) })

	return users
}

// User returns the user with id.
func (s *Store) User(id int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	return u, ok
}

// AddUser stores nu under a fresh id.
func (s *Store) AddUser(nu NewUser) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := User{ID: s.nextID, Name: nu.Name, Email: nu.Email}
	s.users[u.ID] = u
	s.nextID++

	return u
}

// ReplaceUser overwrites the user with id.
func (s *Store) ReplaceUser(id int, nu NewUser) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return User{}, false
	}
	u := User{ID: id, Name: nu.Name, Email: nu.Email}
	s.users[id] = u

	return u, true
}

// UpdateUser applies the fields set in uu to the user with id.
func (s *Store) UpdateUser(id int, uu UpdateUser) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	if uu.Name != nil {
		u.Name = *uu.Name
	}
	if uu.Email != nil {
		u.Email = *uu.Email
	}
	s.users[id] = u

	return u, true
}

// DeleteUser removes the user with id, reporting whether it existed.
func (s *Store) DeleteUser(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[id]
	delete(s.users, id)

	return ok
}

// Report returns the report registered under name.
func (s *Store) Report(name string) (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[name]
	return r, ok
}

// StartSession signs name in and returns the session token.
func (s *Store) StartSession(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.sessions[token] = name

	return token
}

// Session returns who token belongs to.
func (s *Store) Session(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.sessions[token]
	return name, ok
}

// EndSession signs token out.
func (s *Store) EndSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
}
