package fixup

import "testing"

func TestApply(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "spaced path separator",
			in:   "let v = Vec :: new();",
			want: "let v = Vec::new();",
		},
		{
			name: "spaced turbofish",
			in:   "iter.collect :: <Vec<_>>()",
			want: "iter.collect::<Vec<_>>()",
		},
		{
			name: "doubled semicolons",
			in:   "x += 1;;",
			want: "x += 1;",
		},
		{
			name: "doubled semicolons across whitespace",
			in:   "x += 1; ;",
			want: "x += 1;",
		},
		{
			name: "trailing whitespace stripped",
			in:   "let a = 1; \t\nlet b = 2;\n",
			want: "let a = 1;\nlet b = 2;\n",
		},
		{
			name: "clean source unchanged",
			in:   "pub fn main() {\n    println!(\"hi\");\n}\n",
			want: "pub fn main() {\n    println!(\"hi\");\n}\n",
		},
		{
			name: "multiple repairs in one pass",
			in:   "let s = String :: from(\"x\");; \n",
			want: "let s = String::from(\"x\");\n",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Apply(c.in); got != c.want {
				t.Errorf("Apply(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
