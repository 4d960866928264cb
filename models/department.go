package models

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
