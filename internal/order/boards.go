package order

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
)

var kitchenStatuses = []model.OrderStatus{
	model.StatusApproved,
	model.StatusInProduction,
	model.StatusPackaging,
	model.StatusReady,
}

var deliveryStatuses = []model.OrderStatus{
	model.StatusReady,
	model.StatusOutForDelivery,
	model.StatusDelivered,
}

// ProductionLine is the quantity of one product due on a date
type ProductionLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// KitchenBoard groups the orders the kitchen works on by status
type KitchenBoard struct {
	Columns    map[model.OrderStatus][]model.Order `json:"columns"`
	Date       string                              `json:"date"`
	Production []ProductionLine                    `json:"production"`
}

// DeliveryBoard lists delivery orders from ready onward, with the driver roster
type DeliveryBoard struct {
	Orders  []model.Order  `json:"orders"`
	Drivers []model.Driver `json:"drivers"`
}

// KitchenBoard returns the kitchen columns and the production totals for date
// (YYYY-MM-DD, today when empty). Cancelled orders never count toward production.
func (s *Service) KitchenBoard(ctx context.Context, actor access.Actor, date string) (*KitchenBoard, error) {
	if err := actor.Require(access.OrderView); err != nil {
		return nil, err
	}
	if actor.ScopedToClient() {
		return nil, errors.Wrap(apperror.ErrForbidden, "kitchen board is staff only")
	}
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	orders, err := s.store.Orders().List(ctx, repository.OrderFilter{Statuses: kitchenStatuses})
	if err != nil {
		return nil, errors.Wrap(err, "list kitchen orders")
	}
	board := &KitchenBoard{Columns: map[model.OrderStatus][]model.Order{}, Date: date}
	for _, st := range kitchenStatuses {
		board.Columns[st] = []model.Order{}
	}
	for _, o := range orders {
		board.Columns[o.Status] = append(board.Columns[o.Status], o)
	}

	all, err := s.store.Orders().List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "list orders due")
	}
	board.Production = productionSummary(all, date)
	return board, nil
}

func productionSummary(orders []model.Order, date string) []ProductionLine {
	byProduct := map[string]*ProductionLine{}
	for _, o := range orders {
		if o.RequestedDate != date || o.Status == model.StatusCancelled {
			continue
		}
		for _, it := range o.Items {
			line, ok := byProduct[it.ProductID]
			if !ok {
				line = &ProductionLine{ProductID: it.ProductID, ProductName: it.ProductName}
				byProduct[it.ProductID] = line
			}
			line.Quantity += it.Quantity
		}
	}

	out := make([]ProductionLine, 0, len(byProduct))
	for _, line := range byProduct {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity == out[j].Quantity {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Quantity > out[j].Quantity
	})
	return out
}

// DeliveryBoard returns delivery-type orders in ready, out_for_delivery or delivered
func (s *Service) DeliveryBoard(ctx context.Context, actor access.Actor) (*DeliveryBoard, error) {
	if err := actor.Require(access.DriverView); err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().List(ctx, repository.OrderFilter{
		Statuses:     deliveryStatuses,
		DeliveryType: model.DeliveryDelivery,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list delivery orders")
	}
	drivers, err := s.store.Drivers().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list drivers")
	}
	return &DeliveryBoard{Orders: orders, Drivers: drivers}, nil
}
