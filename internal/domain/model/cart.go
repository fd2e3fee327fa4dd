package model

import "time"

// メモリ上のカート（DBには保存しない）
type Cart struct {
	ID           string     `json:"id"`
	TenantID     int64      `json:"tenant_id"`
	Lines        []CartLine `json:"lines"`
	Total        int64      `json:"total"`
	CustomerHint string     `json:"customer_hint,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// カートの明細
// 追加時点の名前・価格・在庫を保存。
type CartLine struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	UnitPrice     int64  `json:"unit_price"`
	Quantity      int64  `json:"quantity"`
	StockSnapshot int64  `json:"stock_snapshot"`
	Subtotal      int64  `json:"subtotal"`
}

// 明細が0件なら空扱い
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// 明細から合計を毎回計算し直す
func (c *Cart) Recalculate() {
	var total int64
	for i := range c.Lines {
		c.Lines[i].Subtotal = c.Lines[i].UnitPrice * c.Lines[i].Quantity
		total += c.Lines[i].Subtotal
	}
	c.Total = total
}

// LineIndex は商品IDの明細位置を返す（無ければ -1）
func (c Cart) LineIndex(productID int64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone はスライスまで複製したコピーを返す
func (c Cart) Clone() Cart {
	out := c
	out.Lines = make([]CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}
