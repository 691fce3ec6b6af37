package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germplasm-hub/data-api/types"
)

func TestCheckSortColumn(t *testing.T) {
	allowed := []string{"plants.id", "plants.name"}

	tests := []struct {
		name      string
		requested string
		fallback  string
		want      string
		wantErr   bool
	}{
		{name: "listed column passes", requested: "plants.name", fallback: "plants.id", want: "plants.name"},
		{name: "empty request falls back", requested: "", fallback: "plants.id", want: "plants.id"},
		{name: "empty request without fallback fails", requested: "", fallback: "", wantErr: true},
		{name: "unlisted column fails", requested: "users.password", fallback: "plants.id", wantErr: true},
		{name: "match is case sensitive", requested: "Plants.Name", fallback: "plants.id", wantErr: true},
		{name: "injection attempt fails", requested: "plants.id; DROP TABLE plants", fallback: "plants.id", wantErr: true},
	}

	for _, item := range tests {
		t.Run(item.name, func(t *testing.T) {
			got, err := CheckSortColumn(item.requested, allowed, item.fallback)
			if item.wantErr {
				require.Error(t, err)
				assert.True(t, types.IsInvalidColumn(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, item.want, got)
		})
	}
}
