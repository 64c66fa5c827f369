package enums

// PaymentFilterNoPayments is the sentinel value accepted by the payment-status
// filter for services without any period at all. Every other accepted value is
// a PeriodStatus.
const PaymentFilterNoPayments = "no_payments"
