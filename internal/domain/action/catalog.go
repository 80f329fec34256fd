package action

import (
	"fmt"
	"net/http"
	"strconv"

	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// Admin actions
const (
	AdminGyms             ID = "gyms"
	AdminPendingGyms      ID = "pending-gyms"
	AdminGymOwners        ID = "gymowners"
	AdminPendingGymOwners ID = "pending-gymowners"
	AdminCustomers        ID = "customers"
	AdminApproveOwner     ID = "approve-owner"
	AdminApproveGym       ID = "approve-gym"
	AdminDeleteUser       ID = "delete-user"
	AdminDeleteGym        ID = "delete-gym"
)

// Customer actions
const (
	CustomerViewCenters        ID = "viewCenters"
	CustomerViewBookedSlots    ID = "viewBookedSlots"
	CustomerBalance            ID = "balance"
	CustomerAddWallet          ID = "addWallet"
	CustomerBookSlot           ID = "bookSlot"
	CustomerEditDetails        ID = "editDetails"
	CustomerEditPaymentDetails ID = "editPaymentDetails"
)

// Gym owner actions
const (
	OwnerAddCentre      ID = "addCentre"
	OwnerViewGymDetails ID = "viewGymDetails"
	OwnerViewBookings   ID = "viewBookings"
	OwnerEditDetails    ID = "editDetails"
)

var gymIDParam = Param{Name: "gymId", Label: "Gym ID", Kind: KindInt, Required: true}

// userDetailParams are the optional account fields shared by both edit-details forms.
var userDetailParams = []Param{
	{Name: "fullName", Label: "Full Name", Kind: KindText},
	{Name: "email", Label: "Email", Kind: KindEmail},
	{Name: "password", Label: "Password", Kind: KindPassword},
	{Name: "userPhone", Label: "Phone Number", Kind: KindInt},
	{Name: "city", Label: "City", Kind: KindText},
	{Name: "pinCode", Label: "Pin Code", Kind: KindInt},
}

var adminActions = []Spec{
	{ID: AdminGyms, Label: "View All Gyms", Heading: "All Gym Centres", Method: http.MethodGet, Path: "/admin/gyms", Category: CategoryGyms},
	{ID: AdminPendingGyms, Label: "View Pending Gyms", Heading: "Gyms Awaiting Approval", Method: http.MethodGet, Path: "/admin/gyms/pending", Category: CategoryGyms},
	{ID: AdminGymOwners, Label: "View Gym Owners", Heading: "Gym Owners", Method: http.MethodGet, Path: "/admin/gymowners", Category: CategoryUsers},
	{ID: AdminPendingGymOwners, Label: "View Pending Owners", Heading: "Gym Owners Awaiting Approval", Method: http.MethodGet, Path: "/admin/gymowners/pending", Category: CategoryUsers},
	{ID: AdminCustomers, Label: "View Customers", Heading: "Customers", Method: http.MethodGet, Path: "/admin/customers", Category: CategoryUsers},
	{
		ID: AdminApproveOwner, Label: "Approve Owner", Title: "Approve Gym Owner",
		Method: http.MethodPost, Path: "/admin/gymowners/approve/{email}",
		Params: []Param{{Name: "email", Label: "Owner email", Kind: KindEmail, Required: true}},
	},
	{
		ID: AdminApproveGym, Label: "Approve Gym", Title: "Approve Gym Centre",
		Method: http.MethodPost, Path: "/admin/gyms/approve/{gymId}",
		Params: []Param{gymIDParam},
	},
	{
		ID: AdminDeleteUser, Label: "Delete User", Title: "Delete User",
		Method: http.MethodDelete, Path: "/admin/users/{userId}",
		Params: []Param{{Name: "userId", Label: "User ID", Kind: KindInt, Required: true}},
	},
	{
		ID: AdminDeleteGym, Label: "Delete Gym", Title: "Delete Gym Centre",
		Method: http.MethodDelete, Path: "/admin/gyms/{gymId}",
		Params: []Param{gymIDParam},
	},
}

var customerActions = []Spec{
	{ID: CustomerViewCenters, Label: "View Gym Centers", Heading: "Available Gym Centers", Method: http.MethodGet, Path: "/customer/centers", Category: CategoryGyms},
	{ID: CustomerViewBookedSlots, Label: "My Bookings", Heading: "My Bookings", Method: http.MethodGet, Path: "/customer/bookings/{self}", Category: CategoryBookings},
	{ID: CustomerBalance, Label: "Wallet Balance", Heading: "Current Wallet Balance", Method: http.MethodGet, Path: "/customer/balance/{self}", Render: RenderCurrency},
	{
		ID: CustomerAddWallet, Label: "Add Money", Title: "Add Money to Wallet",
		Method: http.MethodPost, Path: "/customer/wallet/add",
		Params:  []Param{{Name: "amount", Label: "Amount", Kind: KindInt, Required: true}},
		Payload: walletPayload,
	},
	{
		ID: CustomerBookSlot, Label: "Book a Slot", Title: "Book a Slot",
		Method: http.MethodPost, Path: "/customer/slots/book",
		Params: []Param{
			gymIDParam,
			{Name: "slotId", Label: "Slot ID", Kind: KindInt, Required: true},
			{Name: "date", Label: "Booking Date (YYYY-MM-DD)", Kind: KindDate, Required: true},
		},
		Payload: bookingPayload,
		Notify:  NotifyBookingReceipt,
	},
	{
		ID: CustomerEditDetails, Label: "Edit My Details", Title: "Edit My Details",
		Method: http.MethodPut, Path: "/customer/details/{self}",
		Params:  userDetailParams,
		Payload: customerDetailsPayload,
	},
	{
		ID: CustomerEditPaymentDetails, Label: "Edit Payment Details", Title: "Edit Payment Details",
		Method: http.MethodPut, Path: "/customer/payments/edit/{self}",
		Params: []Param{
			{Name: "paymentType", Label: "Payment Type (1 for Card, 2 for UPI)", Kind: KindInt, Required: true},
			{Name: "paymentInfo", Label: "Payment Info", Kind: KindText, Required: true},
		},
		Payload: paymentPayload,
	},
}

var ownerActions = []Spec{
	{
		ID: OwnerAddCentre, Label: "Add Gym Centre", Title: "Add New Gym Centre",
		Method: http.MethodPost, Path: "/gymowner/centres/add",
		Params: []Param{
			{Name: "centreName", Label: "Gym Name", Kind: KindText, Required: true},
			{Name: "capacity", Label: "Capacity", Kind: KindInt, Required: true},
			{Name: "cost", Label: "Cost per Slot", Kind: KindInt, Required: true},
			{Name: "city", Label: "City", Kind: KindText, Required: true},
			{Name: "state", Label: "State", Kind: KindText, Required: true},
			{Name: "pincode", Label: "Pin Code", Kind: KindText, Required: true},
			{Name: "facilities", Label: "Facilities (comma-separated)", Kind: KindText},
		},
		Payload: centrePayload,
	},
	{ID: OwnerViewGymDetails, Label: "My Gym Centres", Heading: "My Gym Centres", Method: http.MethodGet, Path: "/gymowner/centres/{self}", Category: CategoryGyms},
	{
		ID: OwnerViewBookings, Label: "View Bookings", Title: "View Bookings", Heading: "Bookings for Gym {gymId}",
		Method: http.MethodGet, Path: "/gymowner/bookings/{self}/{gymId}",
		Params:   []Param{gymIDParam},
		Category: CategoryBookings,
	},
	{
		ID: OwnerEditDetails, Label: "Edit My Details", Title: "Edit My Details",
		Method: http.MethodPut, Path: "/gymowner/details/{self}",
		Params: append(append([]Param{}, userDetailParams...),
			Param{Name: "pan", Label: "PAN", Kind: KindText},
			Param{Name: "aadhaar", Label: "Aadhaar", Kind: KindText},
			Param{Name: "gst", Label: "GST", Kind: KindText},
		),
		Payload: ownerDetailsPayload,
	},
}

var catalog = map[session.Role][]Spec{
	session.RoleAdmin:    withRole(session.RoleAdmin, adminActions),
	session.RoleCustomer: withRole(session.RoleCustomer, customerActions),
	session.RoleOwner:    withRole(session.RoleOwner, ownerActions),
}

func withRole(r session.Role, specs []Spec) []Spec {
	out := make([]Spec, len(specs))
	for i, s := range specs {
		s.Role = r
		out[i] = s
	}
	return out
}

// ForRole returns a role's actions in dashboard order.
func ForRole(r session.Role) []Spec {
	specs := catalog[r]
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup finds the spec for an action on a role's dashboard.
// PRE: none
// POST: Returns ErrUnknownAction if the role has no such action
func Lookup(r session.Role, id ID) (Spec, error) {
	for _, s := range catalog[r] {
		if s.ID == id {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %s for role %s", ErrUnknownAction, id, r)
}

// --- Payload shapes ---

type walletRequest struct {
	CustomerID int `json:"customerId"`
	Amount     int `json:"amount"`
}

type bookingRequest struct {
	CustomerID int    `json:"customerId"`
	GymID      int    `json:"gymId"`
	SlotID     int    `json:"slotId"`
	Date       string `json:"date"`
}

type paymentRequest struct {
	PaymentType int    `json:"paymentType"`
	PaymentInfo string `json:"paymentInfo"`
}

type centreRequest struct {
	OwnerID    int    `json:"ownerId"`
	CentreName string `json:"centreName"`
	Capacity   int    `json:"capacity"`
	Cost       int    `json:"cost"`
	Approved   bool   `json:"approved"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
	Facilities string `json:"facilities"`
}

type customerDetailsRequest struct {
	User     map[string]any `json:"user"`
	Customer map[string]any `json:"customer"`
}

type ownerDetailsRequest struct {
	User     map[string]any `json:"user"`
	GymOwner map[string]any `json:"gymOwner"`
}

func walletPayload(sess session.Session, in Values) (any, error) {
	amount, err := in.Int("amount")
	if err != nil {
		return nil, backend.NewInputError("Invalid amount. Please enter a number.")
	}
	return walletRequest{CustomerID: sess.UserID, Amount: amount}, nil
}

func bookingPayload(sess session.Session, in Values) (any, error) {
	gymID, err := in.Int("gymId")
	if err != nil {
		return nil, backend.NewInputError("Invalid gym id. Please enter a number.")
	}
	slotID, err := in.Int("slotId")
	if err != nil {
		return nil, backend.NewInputError("Invalid slot id. Please enter a number.")
	}
	return bookingRequest{CustomerID: sess.UserID, GymID: gymID, SlotID: slotID, Date: in.Get("date")}, nil
}

func paymentPayload(_ session.Session, in Values) (any, error) {
	pt, err := in.Int("paymentType")
	if err != nil {
		return nil, backend.NewInputError("Invalid payment type. Please enter a number.")
	}
	return paymentRequest{PaymentType: pt, PaymentInfo: in.Get("paymentInfo")}, nil
}

func centrePayload(sess session.Session, in Values) (any, error) {
	capacity, err := in.Int("capacity")
	if err != nil {
		return nil, backend.NewInputError("Invalid capacity. Please enter a number.")
	}
	cost, err := in.Int("cost")
	if err != nil {
		return nil, backend.NewInputError("Invalid cost per slot. Please enter a number.")
	}
	return centreRequest{
		OwnerID:    sess.UserID,
		CentreName: in.Get("centreName"),
		Capacity:   capacity,
		Cost:       cost,
		Approved:   false,
		City:       in.Get("city"),
		State:      in.Get("state"),
		Pincode:    in.Get("pincode"),
		Facilities: in.Get("facilities"),
	}, nil
}

func customerDetailsPayload(_ session.Session, in Values) (any, error) {
	user, err := userFields(in)
	if err != nil {
		return nil, err
	}
	return customerDetailsRequest{User: user, Customer: map[string]any{}}, nil
}

func ownerDetailsPayload(_ session.Session, in Values) (any, error) {
	user, err := userFields(in)
	if err != nil {
		return nil, err
	}
	owner := map[string]any{}
	for _, k := range []string{"pan", "aadhaar", "gst"} {
		if v := in.Get(k); v != "" {
			owner[k] = v
		}
	}
	return ownerDetailsRequest{User: user, GymOwner: owner}, nil
}

// userFields collects the non-blank account fields; phone and pin code are sent as numbers.
func userFields(in Values) (map[string]any, error) {
	user := map[string]any{}
	for _, p := range userDetailParams {
		v := in.Get(p.Name)
		if v == "" {
			continue
		}
		if p.Kind == KindInt {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, backend.NewInputError("Invalid %s. Please enter a number.", p.Label)
			}
			user[p.Name] = n
			continue
		}
		user[p.Name] = v
	}
	return user, nil
}
