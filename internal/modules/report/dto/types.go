package dto

type WriteInput struct {
	Title string
}

type WriteOutput struct {
	Path       string
	Slug       string
	EntryCount int
}
