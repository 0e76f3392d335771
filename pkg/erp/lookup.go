package erp

import (
	"context"
	"fmt"
	"net/http"
)

// GetPurchaseOrder loads one purchase order with its lines.
func (c *Client) GetPurchaseOrder(ctx context.Context, docEntry int) (*PurchaseOrder, error) {
	var po PurchaseOrder
	path := fmt.Sprintf("/PurchaseOrders(%d)", docEntry)
	if err := c.do(ctx, http.MethodGet, path, nil, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

// ListOpenPurchaseOrders returns open purchase orders, optionally filtered
// by supplier.
func (c *Client) ListOpenPurchaseOrders(ctx context.Context, cardCode string) ([]PurchaseOrder, error) {
	filter := "DocumentStatus eq 'bost_Open'"
	if cardCode != "" {
		filter += fmt.Sprintf(" and CardCode eq '%s'", escapeKey(cardCode))
	}
	path := fmt.Sprintf("/PurchaseOrders?$filter=%s&$orderby=DocEntry desc&$top=%d", filter, c.pageSize())
	return getList[PurchaseOrder](ctx, c, path)
}

// GetTransferRequest loads one inventory transfer request with its lines.
func (c *Client) GetTransferRequest(ctx context.Context, docEntry int) (*TransferRequest, error) {
	var tr TransferRequest
	path := fmt.Sprintf("/InventoryTransferRequests(%d)", docEntry)
	if err := c.do(ctx, http.MethodGet, path, nil, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// ListOpenTransferRequests returns open transfer requests for a warehouse.
func (c *Client) ListOpenTransferRequests(ctx context.Context, fromWarehouse string) ([]TransferRequest, error) {
	filter := "DocumentStatus eq 'bost_Open'"
	if fromWarehouse != "" {
		filter += fmt.Sprintf(" and FromWarehouse eq '%s'", escapeKey(fromWarehouse))
	}
	path := fmt.Sprintf("/InventoryTransferRequests?$filter=%s&$orderby=DocEntry desc&$top=%d", filter, c.pageSize())
	return getList[TransferRequest](ctx, c, path)
}

// GetItem loads one item master record.
func (c *Client) GetItem(ctx context.Context, itemCode string) (*Item, error) {
	var item Item
	path := fmt.Sprintf("/Items('%s')", escapeKey(itemCode))
	if err := c.do(ctx, http.MethodGet, path, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetBatchNumbers returns on-hand batches for an item in a warehouse.
func (c *Client) GetBatchNumbers(ctx context.Context, itemCode, warehouseCode string) ([]BatchNumberDetail, error) {
	filter := fmt.Sprintf("ItemCode eq '%s'", escapeKey(itemCode))
	if warehouseCode != "" {
		filter += fmt.Sprintf(" and WhsCode eq '%s'", escapeKey(warehouseCode))
	}
	path := fmt.Sprintf("/BatchNumberDetails?$filter=%s&$top=%d", filter, c.pageSize())
	return getList[BatchNumberDetail](ctx, c, path)
}

// ListWarehouses returns all warehouse definitions.
func (c *Client) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	path := fmt.Sprintf("/Warehouses?$top=%d", c.pageSize())
	return getList[Warehouse](ctx, c, path)
}

// ListBinLocations returns the active bins for a warehouse.
func (c *Client) ListBinLocations(ctx context.Context, warehouseCode string) ([]BinLocation, error) {
	filter := fmt.Sprintf("Warehouse eq '%s' and Active eq 'tYES'", escapeKey(warehouseCode))
	path := fmt.Sprintf("/BinLocations?$filter=%s&$top=%d", filter, c.pageSize())
	return getList[BinLocation](ctx, c, path)
}

// GetBinLocationByCode resolves a scanned bin code.
func (c *Client) GetBinLocationByCode(ctx context.Context, binCode string) (*BinLocation, error) {
	filter := fmt.Sprintf("BinCode eq '%s'", escapeKey(binCode))
	path := fmt.Sprintf("/BinLocations?$filter=%s&$top=1", filter)
	bins, err := getList[BinLocation](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, nil
	}
	return &bins[0], nil
}

// GetBinStock returns per-item stock held in a bin.
func (c *Client) GetBinStock(ctx context.Context, binAbsEntry int) ([]BinStockItem, error) {
	path := fmt.Sprintf("/SQLQueries('BinStock')/List?binAbs=%d", binAbsEntry)
	return getList[BinStockItem](ctx, c, path)
}

// ListBusinessPartners returns supplier cards.
func (c *Client) ListBusinessPartners(ctx context.Context) ([]BusinessPartner, error) {
	path := fmt.Sprintf("/BusinessPartners?$filter=CardType eq 'cSupplier'&$top=%d", c.pageSize())
	return getList[BusinessPartner](ctx, c, path)
}

// GetPickList loads one ERP pick list with its rows.
func (c *Client) GetPickList(ctx context.Context, absEntry int) (*PickListDocument, error) {
	var pl PickListDocument
	path := fmt.Sprintf("/PickLists(%d)", absEntry)
	if err := c.do(ctx, http.MethodGet, path, nil, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// ListOpenPickLists returns released pick lists.
func (c *Client) ListOpenPickLists(ctx context.Context) ([]PickListDocument, error) {
	path := fmt.Sprintf("/PickLists?$filter=Status eq 'ps_Released'&$orderby=Absoluteentry desc&$top=%d", c.pageSize())
	return getList[PickListDocument](ctx, c, path)
}

func (c *Client) pageSize() int {
	if c.cfg.PageSize > 0 {
		return c.cfg.PageSize
	}
	return 100
}
