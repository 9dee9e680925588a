package sidelink

// SelectMCS implements spec.md §4.4: iterate mcs ascending over [minMcs,
// maxMcs], compute the transport block capacity at that mcs for the given
// number of granted resource blocks, and return the first mcs whose
// capacity exceeds pduLength. Unlike the original source (spec.md §9 Open
// Questions), the modulation branch below consults the loop variable mcs,
// not a fixed max-mcs value.
func SelectMCS(pduLength, totalGrantedBlocks, minMcs, maxMcs int) (mcs int, capacity int, err error) {
	var lastCapacity int
	for m := minMcs; m <= maxMcs; m++ {
		mod, i := modulationFor(m)
		tbs := itbsToTbs(mod, m-i, totalGrantedBlocks)
		lastCapacity = tbs
		if tbs > pduLength {
			return m, tbs, nil
		}
	}
	return 0, 0, &NoMcsFits{
		PduLength:    pduLength,
		MaxCapacity:  lastCapacity,
		TotalGranted: totalGrantedBlocks,
		MinMcs:       minMcs,
		MaxMcs:       maxMcs,
	}
}
