package model

import "html/template"

// UpdateCard is an update post prepared for display.
type UpdateCard struct {
	Slug    string
	Title   string
	Date    string
	Summary string
	Tag     string
	Body    template.HTML
}

// PageView is a page prepared for display.
type PageView struct {
	Name          string
	Title         string
	Subtitle      string
	HeroImage     string
	RightImage    string
	RightImageAlt string
	Attribution   string
	Body          template.HTML
}
