package viewmodels

type HomePage struct {
	BaseViewModel
	OwnerName string
}
