package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/classfeed/internal/application"
	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

func mate(id, year string) model.Classmate {
	m := model.Classmate{ID: id}
	if year != "-" {
		m.Education = &model.Education{EnrollmentYear: year}
	}
	return m
}

func TestClassmateList_BlankYearListsAllSortedDescending(t *testing.T) {
	api := &mockClassroomAPI{classmates: []model.Classmate{
		mate("a", "2563"),
		mate("b", "-"),
		mate("c", "2565"),
		mate("d", "n/a"),
		mate("e", "2563"),
		mate("f", "2566"),
	}}
	svc := application.NewClassmateService(api)

	got, err := svc.List(context.Background(), "  ")
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	// Stable: equal years keep server order; missing and non-numeric sort as 0.
	assert.Equal(t, []string{"f", "c", "a", "e", "b", "d"}, ids)
	assert.Equal(t, []string{""}, api.yearsRequested)
}

func TestClassmateList_ByYear(t *testing.T) {
	api := &mockClassroomAPI{classmatesByYear: map[string][]model.Classmate{
		"2565": {mate("x", "2565")},
	}}
	svc := application.NewClassmateService(api)

	got, err := svc.List(context.Background(), " 2565 ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, []string{"2565"}, api.yearsRequested)
}

func TestClassmateList_Error(t *testing.T) {
	api := &mockClassroomAPI{classmatesErr: assert.AnError}
	svc := application.NewClassmateService(api)

	_, err := svc.List(context.Background(), "")
	require.ErrorIs(t, err, assert.AnError)
}
