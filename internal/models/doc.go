// Package models defines the core domain models for Splitr.
//
// # Models
//
//   - Receipt: A parsed receipt with its normalized line items
//   - LineItem: One distinct purchasable item on a receipt
//   - SplitSession: The editable state of splitting one receipt
//   - Person: A participant in a split session
//   - TipPolicy: Percentage-of-subtotal or fixed-amount tip
//   - Allocation / PersonShare: The computed per-person result
//   - User: A registered account that owns receipts
//
// # Design Principles
//
// 1. **Money is decimal**: all monetary fields use shopspring/decimal;
// rounding to cents happens only when a result is presented or finalized.
// 2. **Stable identity**: line items and people carry synthetic UUIDs
// assigned at creation; assignment never matches on (name, price).
// 3. **Derived results stay derived**: an Allocation is a pure function of
// a session's items, people, and assignments. Only the finalized result
// is stored.
// 4. **Avoid circular references**: relationships use ID strings, not
// pointers.
package models
