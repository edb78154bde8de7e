package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange           = "ecommerce.events"
	OrderPlacedRoutingKey    = "order.placed.v1"
	CheckoutFailedRoutingKey = "checkout.failed.v1"
	EventTypeOrderPlaced     = "OrderPlaced"
	EventTypeCheckoutFailed  = "CheckoutFailed"
	orderPlacedSchema        = "ecommerce.checkout.order-placed.v1"
	checkoutFailedSchema     = "ecommerce.checkout.checkout-failed.v1"
	defaultProducer          = "checkout-service"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
