package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

func TestSectionMenuLayout(t *testing.T) {
	sections := []domain.Section{
		{Title: "Character"},
		{Title: "Career"},
		{Title: "Health"},
	}

	kb := SectionMenu(sections)
	require.Len(t, kb, 4)

	for i, sec := range sections {
		require.Len(t, kb[i], 1)
		assert.Equal(t, sec.Title, kb[i][0].Label)

		action, err := domain.ParseAction(kb[i][0].Data)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionSelect, action.Kind)
		assert.Equal(t, i, action.Index)
	}

	tail := kb[len(kb)-1]
	require.Len(t, tail, 2)
	assert.Equal(t, "export", tail[0].Data)
	assert.Equal(t, "finish", tail[1].Data)
}

func TestSectionMenuIsPure(t *testing.T) {
	sections := []domain.Section{{Title: "A"}, {Title: "B"}}
	assert.Equal(t, SectionMenu(sections), SectionMenu(sections))
}

func TestSectionMenuEmptySectionsStillHasControls(t *testing.T) {
	kb := SectionMenu(nil)
	require.Len(t, kb, 1)
	assert.Len(t, kb[0], 2)
}

func TestSectionViewAndGenderPromptPayloadsParse(t *testing.T) {
	for _, kb := range []domain.Keyboard{SectionView(), GenderPrompt()} {
		for _, row := range kb {
			for _, btn := range row {
				_, err := domain.ParseAction(btn.Data)
				assert.NoError(t, err, "payload %q", btn.Data)
			}
		}
	}
}

func TestGenderPromptCoversBothGenders(t *testing.T) {
	kb := GenderPrompt()
	require.Len(t, kb, 1)
	require.Len(t, kb[0], 2)

	female, err := domain.ParseAction(kb[0][0].Data)
	require.NoError(t, err)
	assert.Equal(t, domain.GenderFemale, female.Gender)

	male, err := domain.ParseAction(kb[0][1].Data)
	require.NoError(t, err)
	assert.Equal(t, domain.GenderMale, male.Gender)
}
