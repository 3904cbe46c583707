package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/precureplaylist/internal/types"
)

func TestRunList(t *testing.T) {
	svc, _ := newTestServices(t, nil, "")

	for _, row := range []*types.PlaylistRow{
		{UserID: "tester", Name: "Heartcatch Favorites"},
		{UserID: "tester", Name: "Smile Openings"},
		{UserID: "someone-else", Name: "Heartcatch Endings"},
	} {
		require.NoError(t, svc.store.Save(t.Context(), row))
	}

	tests := []struct {
		name     string
		userID   string
		term     string
		contains []string
		excludes []string
	}{
		{
			name:     "one user",
			userID:   "tester",
			contains: []string{"2 stored playlist(s)", "Heartcatch Favorites", "Smile Openings"},
			excludes: []string{"Heartcatch Endings"},
		},
		{
			name:     "every user",
			contains: []string{"3 stored playlist(s)", "Heartcatch Endings"},
		},
		{
			name:     "search term",
			term:     "HEARTCATCH",
			contains: []string{"2 stored playlist(s)", "Heartcatch Favorites", "Heartcatch Endings"},
			excludes: []string{"Smile Openings"},
		},
		{
			name:     "nothing found",
			userID:   "nobody",
			contains: []string{"No stored playlists found."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runList(t.Context(), svc, tt.userID, tt.term, &out))

			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestListAndDeleteCmds(t *testing.T) {
	list := newListCmd()
	assert.Equal(t, "list", list.Use)
	for _, name := range []string{"user", "all", "search"} {
		assert.NotNil(t, list.Flags().Lookup(name), "flag %s should exist", name)
	}

	del := newDeleteCmd()
	assert.Equal(t, "delete <id>", del.Use)
	assert.Error(t, del.Args(del, []string{}))
	assert.NoError(t, del.Args(del, []string{"abc"}))
}
