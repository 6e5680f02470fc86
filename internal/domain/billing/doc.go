// Package billing holds the yearly bills issued against billable entities, the payments and
// adjustments recorded against them, and the rules that read them.
//
// Key types:
//   - Bill: a dated snapshot of what an entity owes for one year, with its delivery state
//   - Payment: money received against a bill; only successful payments count as paid
//   - BillAdjustment: a manual correction targeting an entity
//
// Domain services:
//   - BalanceReconciler: picks the authoritative outstanding balance for a property
//
// Bills and adjustments point at their owner through shared.EntityRef.
package billing
