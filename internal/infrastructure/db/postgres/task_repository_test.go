package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskflow/taskflow-api/internal/core/ports"
)

func TestBuildTaskFilter_OwnerOnly(t *testing.T) {
	where, args := buildTaskFilter(ports.ListTasksFilter{OwnerID: 7, Page: 1, PageSize: 10})

	assert.Equal(t, "owner_id = $1", where)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestBuildTaskFilter_AllFilters(t *testing.T) {
	where, args := buildTaskFilter(ports.ListTasksFilter{
		OwnerID:  3,
		Status:   "done",
		Priority: "high",
		Search:   "50%_off",
	})

	assert.Equal(t, "owner_id = $1 AND status = $2 AND priority = $3 AND (title ILIKE $4 OR description ILIKE $4)", where)
	assert.Equal(t, []any{int64(3), "done", "high", `%50\%\_off%`}, args)
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"plain":   "plain",
		"100%":    `100\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), in)
	}
}
