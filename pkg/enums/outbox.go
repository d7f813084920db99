package enums

// OutboxEventType identifies the domain event stored in outbox_events.
type OutboxEventType string

const (
	EventOrderCreated   OutboxEventType = "purchase_order.created"
	EventOrderConfirmed OutboxEventType = "purchase_order.confirmed"
	EventOrderCancelled OutboxEventType = "purchase_order.cancelled"
	EventOrderReceived  OutboxEventType = "purchase_order.received"
	EventStockAdjusted  OutboxEventType = "stock.adjusted"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregatePurchaseOrder OutboxAggregateType = "purchase_order"
	AggregateProduct       OutboxAggregateType = "product"
)
