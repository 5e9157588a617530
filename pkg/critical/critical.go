// Package critical provides the short exclusion window shared by the tick
// handler and task code.
//
// A Section must only be held across plain field copies: no I/O, no logging,
// no allocation and nothing that can block. Sections do not nest.
//
// On the RP2040 a Section also holds a hardware spinlock, so it excludes
// code running on the second core. Other bare-metal targets are assumed to
// be single core.
package critical
