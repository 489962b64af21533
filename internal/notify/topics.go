package notify

const (
	TopicOrderConfirmed  = "storefront.order.confirmed"
	TopicOrderDegraded   = "storefront.order.degraded"
	TopicOrderReconciled = "storefront.order.reconciled"
	TopicPaymentLink     = "storefront.payment.link"
)

// Partition key = order id, so all events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
