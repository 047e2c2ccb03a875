//go:build windows

package security

import (
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/yusufpapurcu/wmi"

	"github.com/breeze-rmm/trendprobe/internal/logging"
)

const securityCenterNamespace = `root\SecurityCenter2`

type win32OperatingSystem struct {
	ProductType uint32
}

// SecurityCenter2 only exists on workstation SKUs (ProductType 1).
func isWorkstation() (bool, error) {
	var systems []win32OperatingSystem
	if err := wmi.Query("SELECT ProductType FROM Win32_OperatingSystem", &systems); err != nil {
		return false, fmt.Errorf("security: query os product type: %w", err)
	}
	if len(systems) == 0 {
		return false, fmt.Errorf("security: no Win32_OperatingSystem instance")
	}
	return systems[0].ProductType == 1, nil
}

// SecurityCenterProducts returns AV registrations from root\SecurityCenter2.
func SecurityCenterProducts() ([]AVProduct, error) {
	workstation, err := isWorkstation()
	if err != nil {
		return nil, err
	}
	if !workstation {
		log.Debug("security center skipped on server sku")
		return nil, ErrNotSupported
	}

	var products []AVProduct
	err = withService(func(service *ole.IDispatch) error {
		var qerr error
		products, qerr = queryProducts(service)
		return qerr
	})
	return products, err
}

func withService(action func(service *ole.IDispatch) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE: COM was already initialized on this thread.
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return fmt.Errorf("security: initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return fmt.Errorf("security: create wbem locator: %w", err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("security: query wbem locator: %w", err)
	}
	defer locator.Release()

	serviceVar, err := oleutil.CallMethod(locator, "ConnectServer", nil, securityCenterNamespace)
	if err != nil {
		return fmt.Errorf("security: connect %s: %w", securityCenterNamespace, err)
	}
	// Clearing the VARIANT releases the dispatch it holds.
	defer serviceVar.Clear()
	service := serviceVar.ToIDispatch()

	return action(service)
}

func queryProducts(service *ole.IDispatch) ([]AVProduct, error) {
	resultVar, err := oleutil.CallMethod(service, "ExecQuery",
		"SELECT displayName, productState, pathToSignedProductExe, timestamp FROM AntiVirusProduct")
	if err != nil {
		return nil, fmt.Errorf("security: query AntiVirusProduct: %w", err)
	}
	defer resultVar.Clear()
	result := resultVar.ToIDispatch()

	count, err := getIntProperty(result, "Count")
	if err != nil {
		return nil, fmt.Errorf("security: product count: %w", err)
	}

	products := make([]AVProduct, 0, count)
	for i := 0; i < count; i++ {
		itemVar, err := oleutil.CallMethod(result, "ItemIndex", i)
		if err != nil {
			log.Debug("security center item unreadable", "index", i, logging.KeyError, err)
			continue
		}
		products = append(products, readProduct(itemVar))
	}
	return products, nil
}

func readProduct(itemVar *ole.VARIANT) AVProduct {
	defer itemVar.Clear()
	item := itemVar.ToIDispatch()

	name, _ := getStringProperty(item, "displayName")
	state, _ := getIntProperty(item, "productState")
	exe, _ := getStringProperty(item, "pathToSignedProductExe")
	stamp, _ := getStringProperty(item, "timestamp")
	return newAVProduct(name, state, exe, stamp)
}

func getStringProperty(dispatch *ole.IDispatch, name string) (string, error) {
	value, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return "", err
	}
	defer value.Clear()
	return value.ToString(), nil
}

func getIntProperty(dispatch *ole.IDispatch, name string) (int, error) {
	value, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return 0, err
	}
	defer value.Clear()
	return int(value.Val), nil
}
