package mkvtool_test

import (
	"context"
	"strings"
	"testing"

	"dovimux/internal/services/mkvtool"
)

type recordingRunner struct {
	calls [][]string
}

func (r *recordingRunner) Run(_ context.Context, binary string, args ...string) error {
	r.calls = append(r.calls, append([]string{binary}, args...))
	return nil
}

func TestNewRequiresBothBinaries(t *testing.T) {
	if _, err := mkvtool.New("mkvextract", ""); err == nil {
		t.Fatal("expected error when mkvmerge missing")
	}
}

func TestExtractTrackArgs(t *testing.T) {
	runner := &recordingRunner{}
	client, err := mkvtool.New("mkvextract", "mkvmerge", mkvtool.WithRunner(runner))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.ExtractTrack(context.Background(), "movie.mkv", 0, "movie.BL_EL_RPU.hevc"); err != nil {
		t.Fatal(err)
	}
	want := "mkvextract movie.mkv tracks 0:movie.BL_EL_RPU.hevc"
	if got := strings.Join(runner.calls[0], " "); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRemuxUnfilteredKeepsAllNonVideo(t *testing.T) {
	runner := &recordingRunner{}
	client, _ := mkvtool.New("mkvextract", "mkvmerge", mkvtool.WithRunner(runner))
	err := client.Remux(context.Background(), mkvtool.RemuxSpec{
		Output: "movie.DV8.mkv",
		Video:  "movie.DV8.BL_RPU.hevc",
		Source: "movie.mkv",
	})
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(runner.calls[0], " ")
	want := "mkvmerge -o movie.DV8.mkv movie.DV8.BL_RPU.hevc -D movie.mkv --track-order 0:0"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRemuxLanguageFilterSelectsTracks(t *testing.T) {
	runner := &recordingRunner{}
	client, _ := mkvtool.New("mkvextract", "mkvmerge", mkvtool.WithRunner(runner))
	err := client.Remux(context.Background(), mkvtool.RemuxSpec{
		Output:    "movie.DV8.mkv",
		Video:     "movie.DV8.BL_RPU.hevc",
		Source:    "movie.mkv",
		Languages: []string{"eng", "jpn"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(runner.calls[0], " ")
	if !strings.Contains(got, "-a eng,jpn -s eng,jpn") {
		t.Fatalf("language selectors missing: %q", got)
	}
	if !strings.HasSuffix(got, "--track-order 0:0") {
		t.Fatalf("video-first ordering missing: %q", got)
	}
}

func TestRemuxValidatesPaths(t *testing.T) {
	client, _ := mkvtool.New("mkvextract", "mkvmerge")
	if err := client.Remux(context.Background(), mkvtool.RemuxSpec{}); err == nil {
		t.Fatal("expected validation error")
	}
}
