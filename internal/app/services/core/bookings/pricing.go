package bookings

import (
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"fmt"
)

// Pricer turns requested line items into priced ones. Prices come from
// configuration only; a SKU override beats the per-type default.
type Pricer struct {
	pricing config.AppPricing
}

func NewPricer(pricing config.AppPricing) *Pricer {
	return &Pricer{pricing: pricing}
}

func (p *Pricer) unitPrice(itemType models.LineItemType, sku string) (int64, error) {
	if price, ok := p.pricing.SKUOverrides[sku]; ok {
		return price, nil
	}

	switch itemType {
	case models.LineItemTypeRestHouse:
		return p.pricing.RestHouseNightly, nil
	case models.LineItemTypeHorseTraining:
		return p.pricing.HorseTrainingSession, nil
	case models.LineItemTypePlant:
		return p.pricing.Plant, nil
	}
	return 0, fmt.Errorf("unsupported line item type %q", itemType)
}

// Price returns the priced line items and their total in minor units.
func (p *Pricer) Price(items []requests.BookingLineItem) ([]models.LineItem, int64, error) {
	if len(items) == 0 {
		return nil, 0, exceptions.ErrInputValidation(errors.New("booking needs at least one line item"))
	}

	priced := make([]models.LineItem, 0, len(items))
	var total int64
	for _, item := range items {
		itemType := models.LineItemType(item.Type)
		unit, err := p.unitPrice(itemType, item.SKU)
		if err != nil {
			return nil, 0, exceptions.ErrInputValidation(err)
		}
		if unit <= 0 {
			return nil, 0, exceptions.ErrInvalidAmount(fmt.Errorf("no price configured for sku %s", item.SKU))
		}

		lineItem := models.LineItem{
			Type:      itemType,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: unit,
		}

		if itemType == models.LineItemTypeRestHouse {
			if item.Nights < 1 {
				return nil, 0, exceptions.ErrInputValidation(fmt.Errorf("rest house %s needs at least one night", item.SKU))
			}
			lineItem.Nights = item.Nights
			lineItem.Subtotal = unit * int64(item.Quantity) * int64(item.Nights)
		} else {
			lineItem.Subtotal = unit * int64(item.Quantity)
		}

		total += lineItem.Subtotal
		priced = append(priced, lineItem)
	}
	return priced, total, nil
}
