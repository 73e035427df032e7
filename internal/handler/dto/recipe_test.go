package dto

import (
	"encoding/json"
	"testing"
)

// Updates must distinguish a field that was omitted from one sent as an
// empty list: omitted leaves associations alone, empty clears them.
func TestUpdateRecipeRequest_DecodeAbsentVsEmpty(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTags  func(*testing.T, *[]NamedRef)
		wantIngrs func(*testing.T, *[]NamedRef)
	}{
		{
			name: "absent_fields_decode_to_nil",
			body: `{"title": "Renamed"}`,
			wantTags: func(t *testing.T, tags *[]NamedRef) {
				if tags != nil {
					t.Errorf("expected nil tags for absent field, got %v", *tags)
				}
			},
			wantIngrs: func(t *testing.T, ingrs *[]NamedRef) {
				if ingrs != nil {
					t.Errorf("expected nil ingredients for absent field, got %v", *ingrs)
				}
			},
		},
		{
			name: "empty_list_decodes_to_non_nil_empty",
			body: `{"tags": [], "ingredients": []}`,
			wantTags: func(t *testing.T, tags *[]NamedRef) {
				if tags == nil {
					t.Fatal("expected non-nil tags for explicit empty list")
				}
				if len(*tags) != 0 {
					t.Errorf("expected empty tags, got %v", *tags)
				}
			},
			wantIngrs: func(t *testing.T, ingrs *[]NamedRef) {
				if ingrs == nil {
					t.Fatal("expected non-nil ingredients for explicit empty list")
				}
				if len(*ingrs) != 0 {
					t.Errorf("expected empty ingredients, got %v", *ingrs)
				}
			},
		},
		{
			name: "populated_list_decodes_to_values",
			body: `{"tags": [{"name": "Vegan"}]}`,
			wantTags: func(t *testing.T, tags *[]NamedRef) {
				if tags == nil || len(*tags) != 1 || (*tags)[0].Name != "Vegan" {
					t.Errorf("expected single Vegan tag, got %v", tags)
				}
			},
			wantIngrs: func(t *testing.T, ingrs *[]NamedRef) {
				if ingrs != nil {
					t.Errorf("expected nil ingredients for absent field, got %v", *ingrs)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var req UpdateRecipeRequest
			if err := json.Unmarshal([]byte(test.body), &req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			test.wantTags(t, req.Tags)
			test.wantIngrs(t, req.Ingredients)
		})
	}
}
