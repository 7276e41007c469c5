package domain

import (
	"slices"
	"strings"
)

type ShipmentStatus string

const (
	ShipmentStatusPending    ShipmentStatus = "PENDING"
	ShipmentStatusProcessing ShipmentStatus = "PROCESSING"
	ShipmentStatusShipped    ShipmentStatus = "SHIPPED"
	ShipmentStatusDelivered  ShipmentStatus = "DELIVERED"
	ShipmentStatusOverdue    ShipmentStatus = "OVERDUE"
	ShipmentStatusCancelled  ShipmentStatus = "CANCELLED"
	ShipmentStatusReturned   ShipmentStatus = "RETURNED"
)

var shipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusProcessing,
	ShipmentStatusShipped,
	ShipmentStatusDelivered,
	ShipmentStatusOverdue,
	ShipmentStatusCancelled,
	ShipmentStatusReturned,
}

func ShipmentStatuses() []ShipmentStatus {
	return slices.Clone(shipmentStatuses)
}

func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	candidate := ShipmentStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range shipmentStatuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", ErrInvalidShipmentStatus
}

type Shipment struct {
	ID              int64          `json:"id"`
	StoreID         int64          `json:"store_id"`
	CustomerID      int64          `json:"customer_id"`
	DeliveryAddress string         `json:"delivery_address"`
	Status          ShipmentStatus `json:"status"`
}
