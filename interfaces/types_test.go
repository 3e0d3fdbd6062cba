package interfaces

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewResourceName(t *testing.T) {
	for _, valid := range []string{"barbican", "project_a", "project_b_observer", "admin", "svc.user@example"} {
		_, err := NewResourceName(valid)
		require.NoError(t, err, valid)
	}
	for _, invalid := range []string{"", "-leading-dash", "has space", "_underscore_first", "x!"} {
		_, err := NewResourceName(invalid)
		require.Error(t, err, invalid)
	}
}

func TestUserParamsValidate(t *testing.T) {
	params := UserParams{Name: "project_a_admin", Password: "pw", Email: "a@example.com", ProjectID: "p-1"}
	require.NoError(t, params.Validate())

	missingPassword := params
	missingPassword.Password = ""
	require.Error(t, missingPassword.Validate())

	missingProject := params
	missingProject.ProjectID = ""
	require.Error(t, missingProject.Validate())

	badName := params
	badName.Name = "no spaces allowed"
	require.Error(t, badName.Validate())
}
