// Package core contains the ledger domain entities, store contracts, and
// orchestration logic. Store and transport adapters depend on this package;
// core must not depend on them.
package core
