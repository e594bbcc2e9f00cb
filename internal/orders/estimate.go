package orders

// EstimateDeliveryMin memetakan jarak Manhattan antara pelanggan dan
// restoran ke band estimasi antar. Dihitung sekali saat order dibuat dan
// dibekukan di record; relokasi belakangan tidak mengubah order lama.
func EstimateDeliveryMin(userX, userY, restX, restY int) int {
	d := abs(userX-restX) + abs(userY-restY)
	switch {
	case d <= 3:
		return 20
	case d <= 6:
		return 35
	default:
		return 50
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
