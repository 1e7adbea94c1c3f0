package cli

import (
	"reflect"
	"testing"
)

func TestParseChapterSet(t *testing.T) {
	cases := []struct {
		name   string
		single int
		set    string
		want   []int
	}{
		{"Single", 5, "", []int{5}},
		{"CommaList", 0, "1,3,7", []int{1, 3, 7}},
		{"Range", 0, "2-5", []int{2, 3, 4, 5}},
		{"Mixed", 0, "1,4-6,9", []int{1, 4, 5, 6, 9}},
		{"Dedupe", 2, "1-3", []int{1, 2, 3}},
		{"Spaces", 0, " 1 , 3 ", []int{1, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseChapterSet(tc.single, tc.set)
			if err != nil {
				t.Fatalf("parseChapterSet failed: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseChapterSetErrors(t *testing.T) {
	cases := []struct {
		name   string
		single int
		set    string
	}{
		{"Empty", 0, ""},
		{"Zero", 0, "0"},
		{"Negative", -1, ""},
		{"BackwardsRange", 0, "5-2"},
		{"NotANumber", 0, "abc"},
		{"BadRange", 0, "1-x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseChapterSet(tc.single, tc.set); err == nil {
				t.Errorf("expected error for single=%d set=%q", tc.single, tc.set)
			}
		})
	}
}
