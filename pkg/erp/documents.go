package erp

import (
	"context"
	"fmt"
	"net/http"
)

// CreateGoodsReceipt posts a PurchaseDeliveryNotes document.
func (c *Client) CreateGoodsReceipt(ctx context.Context, payload GoodsReceiptPayload) (*DocumentResult, error) {
	if len(payload.DocumentLines) == 0 {
		return nil, fmt.Errorf("goods receipt payload has no lines")
	}

	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"operation": "create_goods_receipt",
		"card_code": payload.CardCode,
		"lines":     len(payload.DocumentLines),
	}), "posting goods receipt to erp")

	var result DocumentResult
	if err := c.do(ctx, http.MethodPost, "/PurchaseDeliveryNotes", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateStockTransfer posts a StockTransfers document.
func (c *Client) CreateStockTransfer(ctx context.Context, payload StockTransferPayload) (*DocumentResult, error) {
	if len(payload.StockTransferLines) == 0 {
		return nil, fmt.Errorf("stock transfer payload has no lines")
	}

	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"operation":      "create_stock_transfer",
		"from_warehouse": payload.FromWarehouse,
		"to_warehouse":   payload.ToWarehouse,
		"lines":          len(payload.StockTransferLines),
	}), "posting stock transfer to erp")

	var result DocumentResult
	if err := c.do(ctx, http.MethodPost, "/StockTransfers", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateInventoryCounting posts an InventoryCountings document.
func (c *Client) CreateInventoryCounting(ctx context.Context, payload InventoryCountingPayload) (*DocumentResult, error) {
	if len(payload.InventoryCountingLines) == 0 {
		return nil, fmt.Errorf("inventory counting payload has no lines")
	}

	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"operation": "create_inventory_counting",
		"lines":     len(payload.InventoryCountingLines),
	}), "posting inventory counting to erp")

	var result DocumentResult
	if err := c.do(ctx, http.MethodPost, "/InventoryCountings", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdatePickList patches picked quantities back onto the ERP pick list.
func (c *Client) UpdatePickList(ctx context.Context, absEntry int, doc PickListDocument) error {
	path := fmt.Sprintf("/PickLists(%d)", absEntry)
	return c.do(ctx, http.MethodPatch, path, doc, nil)
}
