package account

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"accountd/cmd/identity"
)

func TestProfilePatch_Details(t *testing.T) {
	cases := []struct {
		name  string
		patch ProfilePatch
		want  identity.Details
	}{
		{name: "empty", patch: ProfilePatch{}, want: identity.Details{}},
		{name: "single", patch: ProfilePatch{Name: strp("B")}, want: identity.Details{"name": "B"}},
		{
			name: "all",
			patch: ProfilePatch{
				Name: strp("A"), Surname: strp("S"), Birthday: strp("2000-01-01"),
				Email: strp("a@x.com"), Phone: strp("555"),
			},
			want: identity.Details{
				"name": "A", "surname": "S", "birthday": "2000-01-01",
				"email": "a@x.com", "phone": "555",
			},
		},
		{name: "explicit empty string", patch: ProfilePatch{Phone: strp("")}, want: identity.Details{"phone": ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.patch.Details())
			assert.Equal(t, len(tc.want) == 0, tc.patch.Empty())
		})
	}
}
