package director

// RecordFault injects a device fault, standing in for a HAL failure.
func (d *Director) RecordFault(op string, code ErrorCode) {
	d.mu.Lock()
	d.recordFaultLocked(op, code)
	d.mu.Unlock()
}
