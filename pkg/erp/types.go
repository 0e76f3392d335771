package erp

import "github.com/shopspring/decimal"

// loginRequest is the Service Layer login body.
type loginRequest struct {
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
	CompanyDB string `json:"CompanyDB"`
}

// loginResponse carries the session cookie value and timeout.
type loginResponse struct {
	SessionID      string `json:"SessionId"`
	SessionTimeout int    `json:"SessionTimeout"`
}

// odataList wraps collection responses.
type odataList[T any] struct {
	Value    []T     `json:"value"`
	NextLink *string `json:"odata.nextLink,omitempty"`
}

// serviceLayerError is the error envelope the Service Layer returns.
type serviceLayerError struct {
	Error struct {
		Code    any `json:"code"`
		Message struct {
			Lang  string `json:"lang"`
			Value string `json:"value"`
		} `json:"message"`
	} `json:"error"`
}

// PurchaseOrder is the subset of ERP purchase order fields the floor needs.
type PurchaseOrder struct {
	DocEntry       int                 `json:"DocEntry"`
	DocNum         int                 `json:"DocNum"`
	CardCode       string              `json:"CardCode"`
	CardName       string              `json:"CardName"`
	DocDate        string              `json:"DocDate"`
	DocDueDate     string              `json:"DocDueDate"`
	DocumentStatus string              `json:"DocumentStatus"`
	Comments       string              `json:"Comments"`
	DocumentLines  []PurchaseOrderLine `json:"DocumentLines"`
}

// PurchaseOrderLine carries ordered and still-open quantities per line.
type PurchaseOrderLine struct {
	LineNum         int             `json:"LineNum"`
	ItemCode        string          `json:"ItemCode"`
	ItemDescription string          `json:"ItemDescription"`
	Quantity        decimal.Decimal `json:"Quantity"`
	OpenQuantity    decimal.Decimal `json:"RemainingOpenQuantity"`
	UoMCode         string          `json:"UoMCode"`
	WarehouseCode   string          `json:"WarehouseCode"`
	LineStatus      string          `json:"LineStatus"`
}

// TransferRequest mirrors an ERP inventory transfer request document.
type TransferRequest struct {
	DocEntry           int                   `json:"DocEntry"`
	DocNum             int                   `json:"DocNum"`
	DocDate            string                `json:"DocDate"`
	FromWarehouse      string                `json:"FromWarehouse"`
	ToWarehouse        string                `json:"ToWarehouse"`
	DocumentStatus     string                `json:"DocumentStatus"`
	Comments           string                `json:"Comments"`
	StockTransferLines []TransferRequestLine `json:"StockTransferLines"`
}

// TransferRequestLine is one requested item movement.
type TransferRequestLine struct {
	LineNum               int             `json:"LineNum"`
	ItemCode              string          `json:"ItemCode"`
	ItemDescription       string          `json:"ItemDescription"`
	Quantity              decimal.Decimal `json:"Quantity"`
	RemainingOpenQuantity decimal.Decimal `json:"RemainingOpenQuantity"`
	UoMCode               string          `json:"UoMCode"`
	FromWarehouseCode     string          `json:"FromWarehouseCode"`
	WarehouseCode         string          `json:"WarehouseCode"`
}

// Item is the master-data view used by scanning and labels.
type Item struct {
	ItemCode            string `json:"ItemCode"`
	ItemName            string `json:"ItemName"`
	BarCode             string `json:"BarCode"`
	ManageBatchNumbers  string `json:"ManageBatchNumbers"`
	ManageSerialNumbers string `json:"ManageSerialNumbers"`
	InventoryUOM        string `json:"InventoryUOM"`
}

// BatchNumberDetail is one on-hand batch for an item.
type BatchNumberDetail struct {
	BatchNumber    string          `json:"Batch"`
	ItemCode       string          `json:"ItemCode"`
	Quantity       decimal.Decimal `json:"Quantity"`
	ExpirationDate *string         `json:"ExpirationDate"`
	WarehouseCode  string          `json:"WhsCode"`
	Status         string          `json:"Status"`
}

// Warehouse is an ERP warehouse definition.
type Warehouse struct {
	WarehouseCode      string `json:"WarehouseCode"`
	WarehouseName      string `json:"WarehouseName"`
	EnableBinLocations string `json:"EnableBinLocations"`
	BusinessPlaceID    *int   `json:"BusinessPlaceID"`
}

// BinLocation is one bin within a bin-enabled warehouse.
type BinLocation struct {
	AbsEntry  int    `json:"AbsEntry"`
	BinCode   string `json:"BinCode"`
	Warehouse string `json:"Warehouse"`
	Active    string `json:"Active"`
}

// BinStockItem is the stock in one bin, per item.
type BinStockItem struct {
	ItemCode    string          `json:"ItemCode"`
	ItemName    string          `json:"ItemName"`
	OnHandQty   decimal.Decimal `json:"OnHandQty"`
	BinAbsEntry int             `json:"BinAbs"`
}

// BusinessPartner is a supplier or customer card.
type BusinessPartner struct {
	CardCode string `json:"CardCode"`
	CardName string `json:"CardName"`
	CardType string `json:"CardType"`
}

// GoodsReceiptPayload is the PurchaseDeliveryNotes create body.
type GoodsReceiptPayload struct {
	CardCode      string             `json:"CardCode"`
	DocDate       string             `json:"DocDate"`
	Comments      string             `json:"Comments,omitempty"`
	BPLID         *int               `json:"BPL_IDAssignedToInvoice,omitempty"`
	WMSReceiptID  string             `json:"U_WMS_GRPO_ID,omitempty"`
	DocumentLines []GoodsReceiptLine `json:"DocumentLines"`
}

// GoodsReceiptLine is one PO-based receipt line with allocations.
type GoodsReceiptLine struct {
	BaseType      int                 `json:"BaseType"`
	BaseEntry     int                 `json:"BaseEntry"`
	BaseLine      int                 `json:"BaseLine"`
	ItemCode      string              `json:"ItemCode"`
	Quantity      decimal.Decimal     `json:"Quantity"`
	UoMCode       string              `json:"UoMCode,omitempty"`
	WarehouseCode string              `json:"WarehouseCode"`
	BatchNumbers  []BatchNumberEntry  `json:"BatchNumbers,omitempty"`
	SerialNumbers []SerialNumberEntry `json:"SerialNumbers,omitempty"`
}

// StockTransferPayload is the StockTransfers create body.
type StockTransferPayload struct {
	DocDate            string              `json:"DocDate"`
	FromWarehouse      string              `json:"FromWarehouse"`
	ToWarehouse        string              `json:"ToWarehouse"`
	Comments           string              `json:"Comments,omitempty"`
	WMSTransferID      string              `json:"U_WMS_TRANSFER_ID,omitempty"`
	StockTransferLines []StockTransferLine `json:"StockTransferLines"`
}

// StockTransferLine is one transfer movement, optionally request-based.
type StockTransferLine struct {
	LineNum           int                 `json:"LineNum"`
	ItemCode          string              `json:"ItemCode"`
	Quantity          decimal.Decimal     `json:"Quantity"`
	UoMCode           string              `json:"UoMCode,omitempty"`
	FromWarehouseCode string              `json:"FromWarehouseCode"`
	WarehouseCode     string              `json:"WarehouseCode"`
	BaseType          string              `json:"BaseType,omitempty"`
	BaseEntry         *int                `json:"BaseEntry,omitempty"`
	BaseLine          *int                `json:"BaseLine,omitempty"`
	BatchNumbers      []BatchNumberEntry  `json:"BatchNumbers,omitempty"`
	SerialNumbers     []SerialNumberEntry `json:"SerialNumbers,omitempty"`
}

// InventoryCountingPayload is the InventoryCountings create body.
type InventoryCountingPayload struct {
	CountDate              string         `json:"CountDate"`
	Remarks                string         `json:"Remarks,omitempty"`
	InventoryCountingLines []CountingLine `json:"InventoryCountingLines"`
}

// CountingLine is one counted item row.
type CountingLine struct {
	ItemCode        string          `json:"ItemCode"`
	WarehouseCode   string          `json:"WarehouseCode"`
	BinEntry        *int            `json:"BinEntry,omitempty"`
	CountedQuantity decimal.Decimal `json:"CountedQuantity"`
	Counted         string          `json:"Counted"`
}

// BatchNumberEntry allocates a batch on a document line.
type BatchNumberEntry struct {
	BatchNumber    string          `json:"BatchNumber"`
	Quantity       decimal.Decimal `json:"Quantity"`
	ExpiryDate     string          `json:"ExpiryDate,omitempty"`
	BatchAttribute string          `json:"BatchNumberProperty,omitempty"`
}

// SerialNumberEntry allocates a serial on a document line.
type SerialNumberEntry struct {
	InternalSerialNumber     string `json:"InternalSerialNumber"`
	ManufacturerSerialNumber string `json:"ManufacturerSerialNumber,omitempty"`
}

// DocumentResult is the subset returned after creating any marketing document.
type DocumentResult struct {
	DocEntry int `json:"DocEntry"`
	DocNum   int `json:"DocNum"`
}

// PickListDocument mirrors an ERP pick list header and rows.
type PickListDocument struct {
	AbsEntry  int            `json:"Absoluteentry"`
	Name      string         `json:"Name"`
	OwnerCode int            `json:"OwnerCode"`
	PickDate  string         `json:"PickDate"`
	Remarks   string         `json:"Remarks"`
	Status    string         `json:"Status"`
	PickLines []PickListLine `json:"PickListsLines"`
}

// PickListLine is one row to pick on an ERP pick list.
type PickListLine struct {
	LineNumber       int             `json:"LineNumber"`
	OrderEntry       int             `json:"OrderEntry"`
	OrderRowID       int             `json:"OrderRowID"`
	ReleasedQuantity decimal.Decimal `json:"ReleasedQuantity"`
	PickedQuantity   decimal.Decimal `json:"PickedQuantity"`
	ItemCode         string          `json:"ItemCode"`
	WarehouseCode    string          `json:"WarehouseCode"`
}

// BaseTypeTransferRequest is the object type code linking stock transfer
// lines back to an inventory transfer request.
const BaseTypeTransferRequest = "1250000001"

// BaseTypePurchaseOrder is the object type code for purchase orders.
const BaseTypePurchaseOrder = 22
