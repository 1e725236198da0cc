package models

import "github.com/docvault/docvault/internal/store"

// User is the persistent user model.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Record() store.Record {
	return store.Record{"id": u.ID, "name": u.Name, "email": u.Email}
}

func UserFromRecord(r store.Record) *User {
	return &User{ID: r.String("id"), Name: r.String("name"), Email: r.String("email")}
}

// Category is a user-defined document grouping label.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Category) Record() store.Record {
	return store.Record{"id": c.ID, "name": c.Name}
}

func CategoryFromRecord(r store.Record) *Category {
	return &Category{ID: r.String("id"), Name: r.String("name")}
}
