package model

import (
	"strconv"
	"strings"
)

// Education is the optional enrollment record attached to a classmate.
type Education struct {
	Major          string
	EnrollmentYear string // Buddhist-era year as the server returns it, e.g. "2565".
	StudentID      string
}

// Classmate is a member of the classroom directory.
type Classmate struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      string
	Type      string
	Education *Education
}

// EnrollmentYearNumber returns the numeric enrollment year, or 0 when it is
// missing or not a number.
func (c Classmate) EnrollmentYearNumber() int {
	if c.Education == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(c.Education.EnrollmentYear))
	if err != nil {
		return 0
	}
	return n
}
