package content

import (
	"path"
	"time"
)

// Failure is a post that could not be translated
type Failure struct {
	Language string
	Name     string
	Err      error
}

// Report summarizes a sync or retranslation run. Post references are
// "lang/name".
type Report struct {
	Written   []string
	Deleted   []string
	Skipped   []string
	Failed    []Failure
	Fallbacks int
	Backup    string
}

func (r *Report) written(lang, name string) {
	r.Written = append(r.Written, path.Join(lang, name))
}

func (r *Report) failed(lang, name string, err error) {
	r.Failed = append(r.Failed, Failure{Language: lang, Name: name, Err: err})
}

// Event describes the outcome of a single post translation
type Event struct {
	Index     int
	Total     int
	Language  string
	Name      string
	Err       error
	Skipped   bool
	Fallbacks int
	Duration  time.Duration
}

// Observer is notified while a driver runs
type Observer interface {
	// Planned is called once with the number of post translations ahead
	Planned(total int)
	// Starting is called before a post translation begins
	Starting(index, total int, lang, name string)
	// Done is called after a post translation finished or was skipped
	Done(ev Event)
}

type nopObserver struct{}

func (nopObserver) Planned(int)                       {}
func (nopObserver) Starting(int, int, string, string) {}
func (nopObserver) Done(Event)                        {}
