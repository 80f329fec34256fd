package action_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"flipfit/internal/domain/action"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

var (
	admin    = session.Session{UserID: 1, Role: session.RoleAdmin}
	customer = session.Session{UserID: 42, Role: session.RoleCustomer}
	owner    = session.Session{UserID: 9, Role: session.RoleOwner}
)

// TestCatalog_AllSpecsValid verifies every catalogued action resolves its placeholders.
func TestCatalog_AllSpecsValid(t *testing.T) {
	for _, role := range session.ValidRoles {
		specs := action.ForRole(role)
		if len(specs) == 0 {
			t.Errorf("role %s has no actions", role)
		}
		seen := map[action.ID]bool{}
		for _, s := range specs {
			if err := s.Validate(); err != nil {
				t.Errorf("%s/%s: %v", role, s.ID, err)
			}
			if s.Role != role {
				t.Errorf("%s/%s: Role = %s", role, s.ID, s.Role)
			}
			if seen[s.ID] {
				t.Errorf("%s: duplicate id %s", role, s.ID)
			}
			seen[s.ID] = true
		}
	}
}

// TestLookup_RoleScoped verifies actions are only visible on their own dashboard.
func TestLookup_RoleScoped(t *testing.T) {
	if _, err := action.Lookup(session.RoleAdmin, action.AdminDeleteGym); err != nil {
		t.Fatalf("Lookup(admin, delete-gym): %v", err)
	}
	if _, err := action.Lookup(session.RoleCustomer, action.AdminDeleteGym); !errors.Is(err, action.ErrUnknownAction) {
		t.Errorf("customer delete-gym err = %v, want ErrUnknownAction", err)
	}
	c, err := action.Lookup(session.RoleCustomer, action.CustomerEditDetails)
	if err != nil {
		t.Fatal(err)
	}
	o, err := action.Lookup(session.RoleOwner, action.OwnerEditDetails)
	if err != nil {
		t.Fatal(err)
	}
	if c.Path == o.Path {
		t.Errorf("shared id editDetails must map to role-specific paths, both %q", c.Path)
	}
}

// TestResolve_Paths verifies method and path for representative actions.
func TestResolve_Paths(t *testing.T) {
	tests := []struct {
		name       string
		sess       session.Session
		id         action.ID
		in         action.Values
		wantMethod string
		wantPath   string
	}{
		{"admin list", admin, action.AdminGymOwners, nil, http.MethodGet, "/admin/gymowners"},
		{"approve owner", admin, action.AdminApproveOwner, action.Values{"email": "o@x.com"}, http.MethodPost, "/admin/gymowners/approve/o@x.com"},
		{"approve gym", admin, action.AdminApproveGym, action.Values{"gymId": " 12 "}, http.MethodPost, "/admin/gyms/approve/12"},
		{"delete user", admin, action.AdminDeleteUser, action.Values{"userId": "5"}, http.MethodDelete, "/admin/users/5"},
		{"delete gym", admin, action.AdminDeleteGym, action.Values{"gymId": "3"}, http.MethodDelete, "/admin/gyms/3"},
		{"customer bookings", customer, action.CustomerViewBookedSlots, nil, http.MethodGet, "/customer/bookings/42"},
		{"customer balance", customer, action.CustomerBalance, nil, http.MethodGet, "/customer/balance/42"},
		{"owner bookings", owner, action.OwnerViewBookings, action.Values{"gymId": "7"}, http.MethodGet, "/gymowner/bookings/9/7"},
		{"owner centres", owner, action.OwnerViewGymDetails, nil, http.MethodGet, "/gymowner/centres/9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := action.Lookup(tt.sess.Role, tt.id)
			if err != nil {
				t.Fatal(err)
			}
			req, err := spec.Resolve(tt.sess, tt.in)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if req.Method != tt.wantMethod || req.Path != tt.wantPath {
				t.Errorf("Resolve = %s, want %s %s", req, tt.wantMethod, tt.wantPath)
			}
		})
	}
}

// TestResolve_PathEscapesInput verifies prompted identifiers cannot add path segments.
func TestResolve_PathEscapesInput(t *testing.T) {
	spec, _ := action.Lookup(session.RoleAdmin, action.AdminApproveOwner)
	req, err := spec.Resolve(admin, action.Values{"email": "a/../b"})
	if err != nil {
		t.Fatal(err)
	}
	if req.Path != "/admin/gymowners/approve/a%2F..%2Fb" {
		t.Errorf("Path = %q", req.Path)
	}
}

// TestResolve_CancelledOnMissingInput verifies blank required inputs cancel the action.
func TestResolve_CancelledOnMissingInput(t *testing.T) {
	tests := []struct {
		sess session.Session
		id   action.ID
		in   action.Values
	}{
		{admin, action.AdminApproveOwner, nil},
		{admin, action.AdminDeleteUser, action.Values{"userId": "   "}},
		{customer, action.CustomerBookSlot, action.Values{"gymId": "1", "slotId": "2"}},
		{customer, action.CustomerAddWallet, action.Values{}},
		{owner, action.OwnerViewBookings, action.Values{"gymId": ""}},
	}
	for _, tt := range tests {
		spec, _ := action.Lookup(tt.sess.Role, tt.id)
		if _, err := spec.Resolve(tt.sess, tt.in); !errors.Is(err, action.ErrCancelled) {
			t.Errorf("%s: err = %v, want ErrCancelled", tt.id, err)
		}
	}
}

// TestResolve_MalformedNumber verifies non-numeric IDs become RequestErrors.
func TestResolve_MalformedNumber(t *testing.T) {
	spec, _ := action.Lookup(session.RoleAdmin, action.AdminApproveGym)
	_, err := spec.Resolve(admin, action.Values{"gymId": "twelve"})
	re, ok := backend.AsRequestError(err)
	if !ok {
		t.Fatalf("err = %v, want *backend.RequestError", err)
	}
	if re.Message != "Invalid gym id. Please enter a number." {
		t.Errorf("Message = %q", re.Message)
	}
}

// TestResolve_Payloads verifies the JSON bodies sent for form actions.
func TestResolve_Payloads(t *testing.T) {
	tests := []struct {
		name string
		sess session.Session
		id   action.ID
		in   action.Values
		want string
	}{
		{
			"wallet", customer, action.CustomerAddWallet,
			action.Values{"amount": "500"},
			`{"customerId":42,"amount":500}`,
		},
		{
			"booking", customer, action.CustomerBookSlot,
			action.Values{"gymId": "3", "slotId": "8", "date": "2026-10-20"},
			`{"customerId":42,"gymId":3,"slotId":8,"date":"2026-10-20"}`,
		},
		{
			"payment", customer, action.CustomerEditPaymentDetails,
			action.Values{"paymentType": "2", "paymentInfo": "jo@upi"},
			`{"paymentType":2,"paymentInfo":"jo@upi"}`,
		},
		{
			"customer details skips blanks", customer, action.CustomerEditDetails,
			action.Values{"fullName": "Jo Doe", "email": "", "userPhone": "9876543210", "pinCode": "560001"},
			`{"user":{"fullName":"Jo Doe","pinCode":560001,"userPhone":9876543210},"customer":{}}`,
		},
		{
			"owner details", owner, action.OwnerEditDetails,
			action.Values{"city": "Pune", "gst": "GST1"},
			`{"user":{"city":"Pune"},"gymOwner":{"gst":"GST1"}}`,
		},
		{
			"centre", owner, action.OwnerAddCentre,
			action.Values{"centreName": "Iron", "capacity": "30", "cost": "200", "city": "Pune", "state": "MH", "pincode": "411001"},
			`{"ownerId":9,"centreName":"Iron","capacity":30,"cost":200,"approved":false,"city":"Pune","state":"MH","pincode":"411001","facilities":""}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, _ := action.Lookup(tt.sess.Role, tt.id)
			req, err := spec.Resolve(tt.sess, tt.in)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			got, err := json.Marshal(req.Body)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("body = %s\nwant   %s", got, tt.want)
			}
		})
	}
}

// TestResolve_NoBodyForReads verifies GET and DELETE actions carry no payload.
func TestResolve_NoBodyForReads(t *testing.T) {
	spec, _ := action.Lookup(session.RoleAdmin, action.AdminDeleteGym)
	req, err := spec.Resolve(admin, action.Values{"gymId": "4"})
	if err != nil {
		t.Fatal(err)
	}
	if req.Body != nil {
		t.Errorf("Body = %#v, want nil", req.Body)
	}
}

// TestSpec_ReadOnlyAndHeading covers link-runnable actions and heading expansion.
func TestSpec_ReadOnlyAndHeading(t *testing.T) {
	centers, _ := action.Lookup(session.RoleCustomer, action.CustomerViewCenters)
	if !centers.IsReadOnly() {
		t.Error("viewCenters should be read-only")
	}
	bookings, _ := action.Lookup(session.RoleOwner, action.OwnerViewBookings)
	if bookings.IsReadOnly() {
		t.Error("viewBookings collects a gym id and is not read-only")
	}
	if got := bookings.ResultHeading(action.Values{"gymId": "7"}); got != "Bookings for Gym 7" {
		t.Errorf("ResultHeading = %q", got)
	}
	approve, _ := action.Lookup(session.RoleAdmin, action.AdminApproveOwner)
	if approve.IsReadOnly() {
		t.Error("approve-owner mutates and must not be read-only")
	}
}

// TestSpec_ValidateRejectsUndeclaredPlaceholder verifies the consistency check.
func TestSpec_ValidateRejectsUndeclaredPlaceholder(t *testing.T) {
	bad := action.Spec{ID: "x", Role: session.RoleAdmin, Method: http.MethodGet, Path: "/admin/{gymId}"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for undeclared placeholder")
	}
	unterminated := action.Spec{ID: "y", Role: session.RoleAdmin, Method: http.MethodGet, Path: "/admin/{self"}
	if err := unterminated.Validate(); err == nil {
		t.Error("expected error for unterminated placeholder")
	}
}
