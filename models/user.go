package models

type User struct {
	ID       string `json:"userId"`
	Username string `json:"username"`
	Password string `json:"-"`
}
