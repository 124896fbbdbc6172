package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestSource(t *testing.T) (*FileSource, string) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "product/session-recording.mdx", `---
title: Session recording
subtitle: Watch people use your product
productTeam: Replay
blogTags:
  - session recording
productFeatures:
  - title: Console logs
    description: See errors
productCTA:
  title: Try it
  subtitle: Free
---
Record every session.

<Hero />
`)
	writeFile(t, dir, "product/feature-flags.md", "Ship safely.\n")
	writeFile(t, dir, "blog/older.md", `---
title: Older post
date: 2021-01-01
tags: ["session recording"]
---
`)
	writeFile(t, dir, "blog/newer.md", `---
title: Newer post
date: 2023-01-01
tags: ["session recording", "product"]
---
`)
	writeFile(t, dir, "blog/other.md", `---
title: Other
date: 2024-01-01
tags: ["hiring"]
---
`)
	writeFile(t, dir, "team/ann.md", `---
name: Ann
team: ["Replay"]
startDate: 2022-03-01
---
`)
	writeFile(t, dir, "team/bob.md", `---
name: Bob
team: ["Replay"]
teamLead: true
startDate: 2020-01-01
---
`)
	writeFile(t, dir, "team/notes.txt", "ignored")

	s, err := NewFileSource(dir)
	require.NoError(t, err)
	return s, dir
}

func TestFileSource_Page(t *testing.T) {
	s, _ := newTestSource(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		slug          string
		expectedTitle string
		expectedErr   error
	}{
		{name: "success: frontmatter title", slug: "session-recording", expectedTitle: "Session recording"},
		{name: "success: title from file name", slug: "feature-flags", expectedTitle: "Feature Flags"},
		{name: "failure: unknown slug", slug: "nope", expectedErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Page(ctx, tt.slug)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTitle, page.Title)
			assert.Equal(t, tt.slug, page.Slug)
		})
	}
}

func TestFileSource_PageFields(t *testing.T) {
	s, _ := newTestSource(t)

	page, err := s.Page(context.Background(), "session-recording")
	require.NoError(t, err)

	assert.Equal(t, "Replay", page.Team)
	assert.Equal(t, []string{"session recording"}, page.BlogTags)
	require.Len(t, page.Features, 1)
	assert.Equal(t, "Console logs", page.Features[0].Title)
	require.NotNil(t, page.CTA)
	assert.Equal(t, "Try it", page.CTA.Title)
	assert.Nil(t, page.Testimonial)
	assert.Contains(t, page.Body, "<Hero />")
	assert.Equal(t, "Record every session.", page.Excerpt)
}

func TestFileSource_PostsByTags(t *testing.T) {
	s, _ := newTestSource(t)

	posts, err := s.PostsByTags(context.Background(), []string{"session recording"})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Slug)
	assert.Equal(t, "older", posts[1].Slug)

	posts, err = s.PostsByTags(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFileSource_TeamMembers(t *testing.T) {
	s, _ := newTestSource(t)

	members, err := s.TeamMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Bob", members[0].Name)
	assert.Equal(t, "Ann", members[1].Name)
	assert.True(t, members[1].InTeam("Replay"))
}

func TestFileSource_Reload(t *testing.T) {
	s, dir := newTestSource(t)
	ctx := context.Background()

	writeFile(t, dir, "product/analytics.mdx", "---\ntitle: Product analytics\n---\nCharts.\n")
	_, err := s.Page(ctx, "analytics")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Reload())
	page, err := s.Page(ctx, "analytics")
	require.NoError(t, err)
	assert.Equal(t, "Product analytics", page.Title)
	assert.Len(t, s.Pages(), 3)
}

func TestFileSource_MissingDirs(t *testing.T) {
	s, err := NewFileSource(t.TempDir())
	require.NoError(t, err)

	members, err := s.TeamMembers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.Empty(t, s.Pages())
}
