package backend

import "testing"

func TestParseGitVersionOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want gitVersion
		ok   bool
	}{
		{name: "empty", in: "", ok: false},
		{name: "plain", in: "git version 2.44.0\n", want: gitVersion{major: 2, minor: 44, patch: 0}, ok: true},
		{name: "apple_git", in: "git version 2.39.3 (Apple Git-146)\n", want: gitVersion{major: 2, minor: 39, patch: 3}, ok: true},
		{name: "windows_suffix", in: "git version 2.39.3.windows.1\n", want: gitVersion{major: 2, minor: 39, patch: 3}, ok: true},
		{name: "no_prefix", in: "2.42.1\n", want: gitVersion{major: 2, minor: 42, patch: 1}, ok: true},
		{name: "no_patch", in: "git version 2.42\n", want: gitVersion{major: 2, minor: 42, patch: 0}, ok: true},
		{name: "major_only", in: "git version 3\n", ok: false},
		{name: "invalid", in: "git version not-a-version\n", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := parseGitVersionOutput(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (got=%+v)", ok, tt.ok, got)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateGitVersion(t *testing.T) {
	t.Parallel()

	minimum := gitVersion{major: 2, minor: 23, patch: 0}
	if err := validateGitVersion("git version 2.23.0\n", minimum); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	err := validateGitVersion("git version 2.22.9\n", minimum)
	if err == nil {
		t.Fatal("expected error for old git")
	}
	if want := "`git 2.22.9 is too old; asyncgit requires git >= 2.23.0`"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err, want)
	}
	if err := validateGitVersion("git version 2.39.3 (Apple Git-146)\n", minGitVersion); err != nil {
		t.Fatalf("expected the minimum to accept current git, got %v", err)
	}
	if err := validateGitVersion("garbage", minimum); err == nil {
		t.Fatal("expected error for unparsable output")
	}
}
