package fsrs

// Empirically-fit reference weights from the published FSRS algorithm.
// These are opaque data: never mutated, never "optimized" here. Index layout
// (shared by both versions): 0-3 seed stability per first rating, 4-7
// difficulty seed and drift, 8-16 stability growth terms and the hard/easy
// multipliers, 17-18 same-day terms. The 21-entry vector adds 19 (same-day
// stability damping) and 20 (forgetting-curve decay).

var defaultWeightsV5 = [19]float64{
	0.40255, 1.18385, 3.173, 15.69105,
	7.1949, 0.5345, 1.4604, 0.0046,
	1.54575, 0.1192, 1.01925, 1.9395,
	0.11, 0.29605, 2.2698, 0.2315,
	2.9898, 0.51655, 0.6621,
}

var defaultWeightsV6 = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956,
	6.4133, 0.8334, 3.0194, 0.001,
	1.8722, 0.1666, 0.796, 1.4835,
	0.0614, 0.2629, 1.6483, 0.6014,
	1.8729, 0.5425, 0.0912, 0.0658,
	0.1542,
}
