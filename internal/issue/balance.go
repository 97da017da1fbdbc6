package issue

// Balance is how much of a material a project currently holds on site:
// everything issued to it, plus transfers in, minus transfers out, minus what
// was returned to stock. Transfers and returns may only draw against this
// balance, never against warehouse stock directly.
func Balance(issued, transfersIn, transfersOut, returned float64) float64 {
	return issued + transfersIn - transfersOut - returned
}
