package value

import "testing"

/*
TestRender_TopLevelGrammar verifies that the declared type picks the outer
grammar: record declarations render parenthesized with empty NULL slots,
collection declarations render braced.
*/
func TestRender_TopLevelGrammar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        Value
		declared string
		want     string
	}{
		{
			name:     "record_fields",
			v:        Seq{Scalar("123 Main St"), Scalar("Springfield"), Scalar("IL"), Scalar("62704")},
			declared: "ADDRESS_TYPE",
			want:     `("123 Main St",Springfield,IL,62704)`,
		},
		{
			name:     "array_elements",
			v:        Seq{Scalar("Cloud"), Scalar("Tech")},
			declared: "TAGS_ARRAY",
			want:     `{Cloud,Tech}`,
		},
		{
			name:     "default_is_array",
			v:        Seq{Scalar("a"), Scalar("b")},
			declared: "",
			want:     `{a,b}`,
		},
		{
			name:     "null_field_is_empty_slot",
			v:        Seq{Scalar("a"), Null{}, Scalar("c")},
			declared: "ADDRESS_TYPE",
			want:     `(a,,c)`,
		},
		{
			name:     "all_null_record",
			v:        Seq{Null{}, Null{}, Null{}, Null{}},
			declared: "ADDRESS_TYPE",
			want:     `(,,,)`,
		},
		{
			name:     "scalar_passthrough",
			v:        Scalar(`("a","b")`),
			declared: "ADDRESS_TYPE",
			want:     `("a","b")`,
		},
		{
			name:     "bare_null",
			v:        Null{},
			declared: "TAGS_ARRAY",
			want:     "NULL",
		},
		{
			name:     "nil_value",
			v:        nil,
			declared: "TAGS_ARRAY",
			want:     "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Render(tt.v, tt.declared)
			if got != tt.want {
				t.Fatalf("Render(%#v, %q) = %q, want %q", tt.v, tt.declared, got, tt.want)
			}
		})
	}
}

/*
TestRender_Nesting verifies that nesting alternates grammar (records inside
collections and vice versa) and that nested output is quoted so its commas
survive re-tokenization.
*/
func TestRender_Nesting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        Value
		declared string
		want     string
	}{
		{
			name:     "records_inside_collection",
			v:        Seq{Seq{Scalar("a"), Scalar("1")}, Seq{Scalar("b"), Scalar("2")}},
			declared: "PAIR_LIST",
			want:     `{"(a,1)","(b,2)"}`,
		},
		{
			name:     "collection_inside_record",
			v:        Seq{Scalar("bob"), Seq{Scalar("x"), Scalar("y")}},
			declared: "PROFILE_TYPE",
			want:     `(bob,"{x,y}")`,
		},
		{
			name:     "map_renders_sorted_record",
			v:        Map{"zip": Scalar("62704"), "city": Scalar("Springfield")},
			declared: "ADDRESS_TYPE",
			want:     `(Springfield,62704)`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Render(tt.v, tt.declared)
			if got != tt.want {
				t.Fatalf("Render(%#v, %q) = %q, want %q", tt.v, tt.declared, got, tt.want)
			}
		})
	}
}

/*
TestEscapeField verifies field quoting: separators force quotes and internal
quotes and backslashes are escaped so a round trip through tokenization
recovers the original text.
*/
func TestEscapeField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{"123 Main St", `"123 Main St"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"(wrapped)", `"(wrapped)"`},
		{"{braced}", `"{braced}"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := escapeField(tt.in); got != tt.want {
				t.Fatalf("escapeField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
