package model

// Response is a raw answer value. For likert_5 items it is one of "1".."5".
type Response string

// likertLabels maps Likert levels to their display text.
var likertLabels = map[Response]string{
	"1": "Strongly Disagree",
	"2": "Disagree",
	"3": "Neutral",
	"4": "Agree",
	"5": "Strongly Agree",
}

// LikertLevels returns the five Likert response values in ascending order.
func LikertLevels() []Response {
	return []Response{"1", "2", "3", "4", "5"}
}

// Label returns the display label of r; unknown values are returned verbatim.
func (r Response) Label() string {
	if l, ok := likertLabels[r]; ok {
		return l
	}
	return string(r)
}

// Record pairs an answered item with its response. Records are appended to a
// session history and never mutated.
type Record struct {
	Item     Item     `json:"item"`
	Response Response `json:"response"`
}
