package square

import (
	"errors"
	"testing"
)

func TestValidateRejectsMistaggedObjects(t *testing.T) {
	cases := []struct {
		name    string
		obj     CatalogObject
		wantErr bool
	}{
		{"item with payload", CatalogObject{Type: TypeItem, ID: "I1", ItemData: &ItemData{Name: "Latte"}}, false},
		{"item missing payload", CatalogObject{Type: TypeItem, ID: "I1"}, true},
		{"deleted item without payload", CatalogObject{Type: TypeItem, ID: "I1", IsDeleted: true}, false},
		{"unknown type", CatalogObject{Type: "DISCOUNT", ID: "D1"}, true},
		{"missing id", CatalogObject{Type: TypeCategory, CategoryData: &CategoryData{Name: "Coffee"}}, true},
		{"modifier list", CatalogObject{Type: TypeModifierList, ID: "ML1", ModifierListData: &ModifierListData{Name: "Milk"}}, false},
	}
	for _, tc := range cases {
		err := tc.obj.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected decode error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if tc.wantErr {
			var decodeErr *DecodeError
			if err != nil && !errors.As(err, &decodeErr) {
				t.Errorf("%s: error is not a DecodeError: %v", tc.name, err)
			}
		}
	}
}

func TestIsPlaceholderID(t *testing.T) {
	if !IsPlaceholderID("#temp-object") {
		t.Error("expected #-prefixed id to be a placeholder")
	}
	if IsPlaceholderID("ML_COMMITTED") {
		t.Error("committed id wrongly flagged as placeholder")
	}
	if IsPlaceholderID("") {
		t.Error("empty id is not a placeholder")
	}
}
