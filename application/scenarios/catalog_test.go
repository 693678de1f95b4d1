package scenarios

import (
	"testing"

	"portal_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []Scenario) []string {
	out := make([]string, 0, len(list))
	for _, sc := range list {
		out = append(out, sc.Name)
	}
	return out
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	assert.Equal(t, []string{
		"admin-subscriptions",
		"admin-technical-dashboard",
		"customer-service-requests",
		"customer-upload-limits",
	}, names(all))

	for _, sc := range all {
		assert.Contains(t, []string{PortalAdmin, PortalCustomer}, sc.Portal, sc.Name)
		assert.NotEmpty(t, sc.Description, sc.Name)
		require.NotEmpty(t, sc.Steps, sc.Name)
		assert.Equal(t, "log in", sc.Steps[0].Name, sc.Name)

		seen := map[string]bool{}
		for _, step := range sc.Steps {
			assert.NotNil(t, step.Run, "%s/%s", sc.Name, step.Name)
			assert.False(t, seen[step.Name], "duplicate step %s/%s", sc.Name, step.Name)
			seen[step.Name] = true
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr string
	}{
		{
			name:  "none selects all",
			input: nil,
			want:  names(Catalog()),
		},
		{
			name:  "keeps catalog order",
			input: []string{"customer-upload-limits", "admin-subscriptions"},
			want:  []string{"admin-subscriptions", "customer-upload-limits"},
		},
		{
			name:  "duplicates collapse",
			input: []string{"admin-technical-dashboard", "admin-technical-dashboard"},
			want:  []string{"admin-technical-dashboard"},
		},
		{
			name:    "unknown names are reported",
			input:   []string{"admin-subscriptions", "billing", "reports"},
			wantErr: "unknown scenario(s): billing, reports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.input)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestExpect(t *testing.T) {
	assert.NoError(t, expect(true, "unused"))
	assert.NoError(t, expectEqual("interval", "week", "week"))

	err := expectEqual("interval", "week", "day")
	assert.ErrorIs(t, err, entities.ErrCheckFailed)
	assert.EqualError(t, err, "check failed: interval: want week, got day")

	err = expect(false, "%d rows", 0)
	assert.ErrorIs(t, err, entities.ErrCheckFailed)
	assert.Contains(t, err.Error(), "0 rows")
}
