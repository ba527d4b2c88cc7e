package config

import "fmt"

// StorageKeyStruct names the four persisted slots. The values match the keys
// the browser build wrote to localStorage so exported snapshots stay readable.
type StorageKeyStruct struct {
	Questions        string
	ExamProgress     string
	ExerciseProgress string
	StudyProgress    string
}

// Namespaced prefixes a slot key for shared backends such as Redis.
func (k *StorageKeyStruct) Namespaced(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", prefix, key)
}

var StorageKey = &StorageKeyStruct{
	Questions:        "esame-kb-questions",
	ExamProgress:     "esame-kb-exam-progress",
	ExerciseProgress: "esame-kb-exercise-progress",
	StudyProgress:    "esame-kb-study-progress",
}
