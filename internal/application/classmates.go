package application

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// ClassmateService serves the classroom directory.
type ClassmateService struct {
	api driven.ClassroomAPI
}

// NewClassmateService creates a new ClassmateService.
func NewClassmateService(api driven.ClassroomAPI) *ClassmateService {
	return &ClassmateService{api: api}
}

// List returns the classmates enrolled in year, or everyone when year is
// blank, newest enrollment year first.
func (s *ClassmateService) List(ctx context.Context, year string) ([]model.Classmate, error) {
	year = strings.TrimSpace(year)

	var (
		mates []model.Classmate
		err   error
	)
	if year == "" {
		mates, err = s.api.ListClassmates(ctx)
	} else {
		mates, err = s.api.ListClassmatesByYear(ctx, year)
	}
	if err != nil {
		return nil, fmt.Errorf("list classmates: %w", err)
	}

	slices.SortStableFunc(mates, func(a, b model.Classmate) int {
		return cmp.Compare(b.EnrollmentYearNumber(), a.EnrollmentYearNumber())
	})
	return mates, nil
}
