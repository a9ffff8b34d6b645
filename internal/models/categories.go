package models

// TaskCategories is the fixed set of postable job categories.
var TaskCategories = []string{
	"Content Writing",
	"Academic Writing",
	"Transcription",
	"Graphic Design",
	"Data Entry",
	"Web Development",
	"Video Editing",
	"Translation",
	"Virtual Assistant",
	"Social Media",
}

func IsValidCategory(category string) bool {
	for _, c := range TaskCategories {
		if c == category {
			return true
		}
	}
	return false
}
