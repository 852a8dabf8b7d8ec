package dto

import "github.com/BruksfildServices01/salon-scheduler/internal/models"

type AppointmentListDTO struct {
	ID          uint     `json:"id"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Status      string   `json:"status"`
	StaffID     *uint    `json:"staff_id"`
	CustomerID  *uint    `json:"customer_id"`
	Services    []string `json:"services"`
	FinalAmount float64  `json:"final_amount"`
	BlockReason string   `json:"block_reason,omitempty"`
}

func AppointmentList(apps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		names := make([]string, 0, len(ap.Services))
		for _, s := range ap.Services {
			names = append(names, s.Name)
		}
		out = append(out, AppointmentListDTO{
			ID:          ap.ID,
			Date:        ap.AppointmentDate,
			StartTime:   ap.AppointmentTime,
			EndTime:     ap.EstimatedEndTime,
			Status:      ap.Status,
			StaffID:     ap.StaffID,
			CustomerID:  ap.CustomerID,
			Services:    names,
			FinalAmount: ap.FinalAmount,
			BlockReason: ap.BlockReason,
		})
	}
	return out
}
