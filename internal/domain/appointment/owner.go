package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type OwnerKind string

const (
	OwnerSalon      OwnerKind = "salon"
	OwnerFreelancer OwnerKind = "freelancer"
)

// Owner is the salon or freelancer an appointment belongs to.
type Owner struct {
	Kind OwnerKind
	ID   uint
}

func SalonOwner(id uint) Owner      { return Owner{Kind: OwnerSalon, ID: id} }
func FreelancerOwner(id uint) Owner { return Owner{Kind: OwnerFreelancer, ID: id} }

func (o Owner) IsZero() bool { return o.ID == 0 }

func (o Owner) String() string { return fmt.Sprintf("%s:%d", o.Kind, o.ID) }

// OwnerOf reads the owner reference stored on an appointment.
func OwnerOf(ap *models.Appointment) Owner {
	if ap.SalonID != nil {
		return SalonOwner(*ap.SalonID)
	}
	if ap.FreelancerID != nil {
		return FreelancerOwner(*ap.FreelancerID)
	}
	return Owner{}
}

// Assign writes the owner reference onto ap, clearing the other side.
func (o Owner) Assign(ap *models.Appointment) {
	id := o.ID
	ap.SalonID, ap.FreelancerID = nil, nil
	switch o.Kind {
	case OwnerSalon:
		ap.SalonID = &id
	case OwnerFreelancer:
		ap.FreelancerID = &id
	}
}

// StaffOwner is the context a staff member works in.
func StaffOwner(st *models.Staff) Owner {
	if st.SalonID != nil {
		return SalonOwner(*st.SalonID)
	}
	if st.FreelancerID != nil {
		return FreelancerOwner(*st.FreelancerID)
	}
	return Owner{}
}

// Resource is whose time is reserved: the staff member when one is
// assigned, else the whole owner.
type Resource struct {
	Owner   Owner
	StaffID *uint
}

// Key names the cross-process lock for a day. It is per owner, matching
// the owner row every store lock starts with.
func (r Resource) Key(date string) string {
	return fmt.Sprintf("%s:%s", r.Owner, date)
}
