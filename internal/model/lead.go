package model

import (
	"encoding/json"
	"strings"
)

// Lead is a single scraped business record. Produced by the scrape
// boundary (Apify Google Maps actor or a JSON import); immutable once
// it enters filtering.
type Lead struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Address  string  `json:"address,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Website  string  `json:"website,omitempty"`
	City     string  `json:"city,omitempty"`
	State    string  `json:"state,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Reviews  int     `json:"reviews,omitempty"`
}

// leadWire mirrors Lead but carries the field aliases different
// scrapers emit (name/company_name/title, category/categoryName).
type leadWire struct {
	Name         string  `json:"name"`
	CompanyName  string  `json:"company_name"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	CategoryName string  `json:"categoryName"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Rating       float64 `json:"rating"`
	Reviews      int     `json:"reviews"`
}

// UnmarshalJSON accepts the field aliases used by the scrapers feeding
// this tool. Missing fields decode as empty strings; the filter treats
// them as such rather than rejecting the record.
func (l *Lead) UnmarshalJSON(data []byte) error {
	var w leadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	l.Name = firstNonEmpty(w.Name, w.CompanyName, w.Title)
	l.Category = firstNonEmpty(w.Category, w.CategoryName)
	l.Address = w.Address
	l.Phone = w.Phone
	l.Website = w.Website
	l.City = w.City
	l.State = w.State
	l.Rating = w.Rating
	l.Reviews = w.Reviews
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
