package schema

const (
	DefaultDataset = "prod_presentation"
	DefaultTable   = "customer360"
)

// Customer360 describes the customer-level warehouse table the assistant is
// allowed to query.
func Customer360(dataset, table string) Descriptor {
	if dataset == "" {
		dataset = DefaultDataset
	}
	if table == "" {
		table = DefaultTable
	}
	return Descriptor{
		Dataset: dataset,
		Table:   table,
		Grain:   "This is a CUSTOMER-LEVEL table (one row per customer).",
		Notes: []string{
			"Ignore any rolling-window or snapshot fields (like orders_last_12_months_q1_25) unless explicitly requested.",
		},
		BaseColumns: []string{"total_orders", "total_net_sales"},
		Metrics: []Metric{
			{Name: "Total customers", Expression: "COUNT(DISTINCT customer_key) or COUNT(email)"},
			{Name: "Total orders", Expression: "SUM(total_orders)"},
			{Name: "Total sales", Expression: "SUM(total_net_sales)"},
			{
				Name:       "Average Order Value (AOV)",
				Expression: "SUM(total_net_sales) / SUM(total_orders)",
				Note:       "Do not compute AOV per row, always aggregate first. AOV is always defined, always return it when asked.",
			},
		},
		DateFilter: []string{
			"Always filter using acquisition_date unless explicitly asked for last_order_date.",
			`Example: "January 2025" -> WHERE EXTRACT(YEAR FROM acquisition_date) = 2025 AND EXTRACT(MONTH FROM acquisition_date) = 1`,
		},
		Grouping: []string{
			"Use SUM(total_orders) for orders.",
			"Use SUM(total_net_sales) for sales.",
			"Use SUM(total_net_sales) / SUM(total_orders) for AOV.",
		},
		Columns:  customer360Columns(),
		Footnote: "columns ending in _store describe retail orders, everything else is DTC",
	}
}

func customer360Columns() []Column {
	return []Column{
		{Name: "email", Type: "STRING", Description: "Customer email."},
		{Name: "customer_key", Type: "STRING", Description: "Unique identifier for the customer."},
		{Name: "first_name", Type: "STRING", Description: "Customer's first name."},
		{Name: "last_name", Type: "STRING", Description: "Customer's last name."},
		{Name: "address1", Type: "STRING", Description: "Customer address detail."},
		{Name: "address2", Type: "STRING", Description: "Customer address detail."},
		{Name: "city", Type: "STRING", Description: "Customer address detail."},
		{Name: "state", Type: "STRING", Description: "Customer address detail."},
		{Name: "country", Type: "STRING", Description: "Customer address detail."},
		{Name: "zipcode", Type: "STRING", Description: "Customer address detail."},
		{Name: "phone", Type: "STRING", Description: "Customer's phone number."},
		{Name: "acquisition_date", Type: "DATE", Description: "Date when the customer made their first purchase."},
		{Name: "acquisition_order_id", Type: "STRING", Description: "ID of the customer's first order."},
		{Name: "first_order_value", Type: "FLOAT", Description: "Net sales of first or acquisition order."},
		{Name: "acquisition_product", Type: "STRING", Description: "Product purchased in the acquisition order."},
		{Name: "acquisition_product_category", Type: "STRING", Description: "Category of the acquisition product."},
		{Name: "acquisition_product_selling_group", Type: "STRING", Description: "Selling group of the acquisition product."},
		{Name: "last_order_date", Type: "DATE", Description: "Date of the customer's most recent order."},
		{Name: "most_purchased_product", Type: "STRING", Description: "Most frequently purchased product."},
		{Name: "total_orders", Type: "INTEGER", Description: "Total orders placed by the customer."},
		{Name: "total_net_sales", Type: "FLOAT64", Description: "Total sales amount or LTV of the customer."},
		{Name: "second_order_product_category", Type: "STRING", Description: "Category of the product purchased in the customer's second order."},
		{Name: "second_order_product_selling_group", Type: "STRING", Description: "Selling group of the product purchased in the customer's second order."},
		{Name: "Acquisition_orderid_online", Type: "STRING", Description: "Order ID of the customer's acquisition made through the online channel."},
		{Name: "Acquisition_date_online", Type: "DATE", Description: "Date of online acquisition order."},
		{Name: "Acquisition_Product_online", Type: "STRING", Description: "Product bought in online acquisition."},
		{Name: "Acquisition_ProductCategory_Basket_online", Type: "STRING", Description: "Product category basket for online acquisition."},
		{Name: "Acquisition_Product_Sku_Basket_online", Type: "STRING", Description: "SKU(s) for online acquisition basket."},
		{Name: "Acquisition_product_type_basket", Type: "STRING", Description: "Product type for acquisition basket."},
		{Name: "Acquisition_Product_Category_online", Type: "STRING", Description: "Product category for online acquisition."},
		{Name: "Acquisition_mktg_channel", Type: "STRING", Description: "Marketing channel of acquisition."},
		{Name: "Acquisition_Sourcemedium_online", Type: "STRING", Description: "Source/medium for online acquisition."},
		{Name: "Acquisition_Campaign_online", Type: "STRING", Description: "Campaign name for online acquisition."},
		{Name: "Acquisition_Channel_type_online", Type: "STRING", Description: "Acquisition channel type for online orders."},
		{Name: "Acquisition_orderid_store", Type: "STRING", Description: "Store acquisition order ID."},
		{Name: "Acquisition_date_store", Type: "DATE", Description: "Date of store acquisition order."},
		{Name: "Acquisition_Product_store", Type: "STRING", Description: "Product purchased in acquisition store order."},
		{Name: "Acquisition_ProductCategory_Basket_store", Type: "STRING", Description: "Product category basket in acquisition store order."},
		{Name: "Acquisition_Product_Sku_Basket_store", Type: "STRING", Description: "SKU(s) for store acquisition basket."},
		{Name: "Acquisition_Product_Category_store", Type: "STRING", Description: "Product category for acquisition store order."},
		{Name: "Last_order_id", Type: "STRING", Description: "ID of the last order placed by the customer."},
		{Name: "Last_order_product", Type: "STRING", Description: "Product purchased in the last order."},
		{Name: "Last_order_product_category", Type: "STRING", Description: "Category of the last order product."},
		{Name: "Last_order_selling_group", Type: "STRING", Description: "Selling group of the last order product."},
		{Name: "Last_Orderid_online", Type: "STRING", Description: "Online last order ID, if available."},
		{Name: "LastOrder_online", Type: "DATE", Description: "Date of last online order."},
		{Name: "Last_Order_mktg_Channel", Type: "STRING", Description: "Marketing channel of last online order."},
		{Name: "Last_Order_Sourcemedium_online", Type: "STRING", Description: "Source/medium for last online order."},
		{Name: "Last_Order_Campaign_online", Type: "STRING", Description: "Campaign for last online order."},
		{Name: "Last_Order_Channel_type_online", Type: "STRING", Description: "Channel type of last online order."},
		{Name: "Last_Orderid_store", Type: "STRING", Description: "Store last order ID."},
		{Name: "LastOrder_store", Type: "DATE", Description: "Date of last store order."},
		{Name: "Last_Order_Product_Category_online", Type: "STRING", Description: "Product category for last online order."},
		{Name: "Last_Order_Selling_Group_online", Type: "STRING", Description: "Selling group for last online order."},
		{Name: "Last_Order_Product_Category_store", Type: "STRING", Description: "Product category for last store order."},
		{Name: "Last_Order_Selling_Group_store", Type: "STRING", Description: "Selling group for last store order."},
		{Name: "Tenure", Type: "INTEGER", Description: "Number of days since customer's first acquisition."},
		{Name: "Days_Since_Last_Order", Type: "INTEGER", Description: "Number of days since the last order."},
		{Name: "total_orders_online", Type: "INTEGER", Description: "Number of online orders."},
		{Name: "total_orders_store", Type: "INTEGER", Description: "Number of store orders."},
		{Name: "total_discounted_orders", Type: "INTEGER", Description: "Number of discounted orders."},
		{Name: "discounted_orders_online", Type: "INTEGER", Description: "Discounted online orders."},
		{Name: "discounted_orders_store", Type: "INTEGER", Description: "Discounted store orders."},
		{Name: "total_full_price_orders", Type: "INTEGER", Description: "Number of orders placed at full price."},
		{Name: "full_price_orders_online", Type: "INTEGER", Description: "Number of full-price orders placed through the online channel."},
		{Name: "full_price_orders_store", Type: "INTEGER", Description: "Number of full-price orders placed through store."},
		{Name: "total_refunded_orders", Type: "INTEGER", Description: "Number of refunded orders."},
		{Name: "refunded_orders_online", Type: "INTEGER", Description: "Refunded online orders."},
		{Name: "refunded_orders_store", Type: "INTEGER", Description: "Refunded store orders."},
		{Name: "total_quantity_sold", Type: "INTEGER", Description: "Total items purchased."},
		{Name: "quantity_sold_online", Type: "INTEGER", Description: "Items purchased online."},
		{Name: "quantity_sold_store", Type: "INTEGER", Description: "Items purchased in store."},
		{Name: "total_returned_quantity", Type: "INTEGER", Description: "Total quantity returned."},
		{Name: "quantity_returned_online", Type: "INTEGER", Description: "Returned quantity online."},
		{Name: "quantity_returned_store", Type: "INTEGER", Description: "Returned quantity store."},
		{Name: "total_gross_sales", Type: "FLOAT", Description: "Total gross sales amount."},
		{Name: "gross_sales_online", Type: "FLOAT", Description: "Gross sales online."},
		{Name: "gross_sales_store", Type: "FLOAT", Description: "Gross sales in store."},
		{Name: "total_gross_sales_excl_markdowns", Type: "FLOAT", Description: "Gross sales excluding markdowns."},
		{Name: "gross_sales_excl_markdowns_online", Type: "FLOAT", Description: "Gross sales excluding markdowns online."},
		{Name: "gross_sales_excl_markdowns_store", Type: "FLOAT", Description: "Gross sales excluding markdowns in store."},
		{Name: "sales_2024", Type: "FLOAT", Description: "Total sales in year 2024."},
		{Name: "sales_2023", Type: "FLOAT", Description: "Total sales in year 2023."},
		{Name: "orders_2024", Type: "INTEGER", Description: "Orders in year 2024."},
		{Name: "orders_2023", Type: "INTEGER", Description: "Orders in year 2023."},
		{Name: "total_Markdowns", Type: "FLOAT", Description: "Total markdowns applied."},
		{Name: "Markdowns_online", Type: "FLOAT", Description: "Markdown value online."},
		{Name: "Markdowns_store", Type: "FLOAT", Description: "Markdown value in store."},
		{Name: "net_sales_online", Type: "FLOAT", Description: "Net sales online."},
		{Name: "net_sales_store", Type: "FLOAT", Description: "Net sales in store."},
		{Name: "total_discounts", Type: "FLOAT", Description: "Total discounts applied."},
		{Name: "total_discounts_online", Type: "FLOAT", Description: "Discounts online."},
		{Name: "total_discounts_store", Type: "FLOAT", Description: "Discounts in store."},
		{Name: "total_refunds", Type: "FLOAT", Description: "Total refunds processed."},
		{Name: "total_refunds_online", Type: "FLOAT", Description: "Total refund amount issued for the customer's online orders."},
		{Name: "total_refunds_store", Type: "FLOAT", Description: "Total refund initiated for the customer's orders placed in stores."},
		{Name: "ltv_13_months", Type: "FLOAT", Description: "Customer lifetime value within 13 months from today."},
		{Name: "ltv_24_months", Type: "FLOAT", Description: "Customer lifetime value within 24 months from today."},
		{Name: "ltv_36_months", Type: "FLOAT", Description: "Customer lifetime value within 36 months from today."},
		{Name: "ltv_12_to_24_months", Type: "FLOAT", Description: "Lifetime value from 12 to 24 months."},
		{Name: "ltv_24_to_36_months", Type: "FLOAT", Description: "Lifetime value from 24 to 36 months."},
		{Name: "acq_ltv_12_months", Type: "FLOAT", Description: "Acquisition LTV within 12 months."},
		{Name: "acq_ltv_24_months", Type: "FLOAT", Description: "Acquisition LTV within 24 months."},
		{Name: "acq_ltv_36_months", Type: "FLOAT", Description: "Acquisition LTV within 36 months."},
		{Name: "acq_ltv_12_to_24_months", Type: "FLOAT", Description: "Acquisition LTV from 12 to 24 months."},
		{Name: "acq_ltv_24_to_36_months", Type: "FLOAT", Description: "Acquisition LTV from 24 to 36 months."},
		{Name: "aov_13_months", Type: "FLOAT", Description: "Average order value over 13 months."},
		{Name: "avg_day_diff", Type: "FLOAT", Description: "Average days between orders."},
		{Name: "median_day_diff", Type: "INTEGER", Description: "Median days between orders."},
		{Name: "day_diff_order1_order2", Type: "INTEGER", Description: "Days between order 1 and order 2."},
		{Name: "day_diff_order2_order3", Type: "INTEGER", Description: "Days between order 2 and order 3."},
		{Name: "day_diff_order3_order4", Type: "INTEGER", Description: "Days between order 3 and order 4."},
		{Name: "day_diff_order4_order5", Type: "INTEGER", Description: "Days between order 4 and order 5."},
		{Name: "orders_last_3_months", Type: "INTEGER", Description: "Orders in the last 3 months."},
		{Name: "orders_last_6_months", Type: "INTEGER", Description: "Orders in the last 6 months."},
		{Name: "orders_last_12_months", Type: "INTEGER", Description: "Orders in the last 12 months."},
		{Name: "orders_last_6_to_18_months", Type: "INTEGER", Description: "Orders in the 6 to 18 month window."},
		{Name: "orders_last_12_to_24_months", Type: "INTEGER", Description: "Orders in the 12 to 24 month window."},
		{Name: "orders_last_18_to_36_months", Type: "INTEGER", Description: "Orders in the 18 to 36 month window."},
		{Name: "orders_last_24_to_36_months", Type: "INTEGER", Description: "Orders in the 24 to 36 month window."},
		{Name: "orders_prior_to_36_months", Type: "INTEGER", Description: "Orders prior to 36 months."},
		{Name: "orders_last_12_months_q3_24", Type: "INTEGER", Description: "Orders in last 12 months (Q3 2024)."},
		{Name: "orders_last_12_to_24_months_q3_24", Type: "INTEGER", Description: "Orders 12 to 24 months back (Q3 2024)."},
		{Name: "orders_last_24_to_36_months_q3_24", Type: "INTEGER", Description: "Orders 24 to 36 months back (Q3 2024)."},
		{Name: "orders_prior_to_36_months_q3_24", Type: "INTEGER", Description: "Orders prior to 36 months (Q3 2024)."},
		{Name: "last_order_date_q3_24", Type: "DATE", Description: "Last order date for Q3 2024."},
		{Name: "orders_last_12_months_q4_24", Type: "INTEGER", Description: "Orders in last 12 months (Q4 2024)."},
		{Name: "orders_last_12_to_24_months_q4_24", Type: "INTEGER", Description: "Orders 12 to 24 months back (Q4 2024)."},
		{Name: "orders_last_24_to_36_months_q4_24", Type: "INTEGER", Description: "Orders 24 to 36 months back (Q4 2024)."},
		{Name: "orders_prior_to_36_months_q4_24", Type: "INTEGER", Description: "Orders prior to 36 months (Q4 2024)."},
		{Name: "last_order_date_q4_24", Type: "DATE", Description: "Last order date for Q4 2024."},
		{Name: "orders_last_12_months_q1_25", Type: "INTEGER", Description: "Orders in last 12 months (Q1 2025)."},
		{Name: "orders_last_12_to_24_months_q1_25", Type: "INTEGER", Description: "Orders 12 to 24 months back (Q1 2025)."},
		{Name: "orders_last_24_to_36_months_q1_25", Type: "INTEGER", Description: "Orders 24 to 36 months back (Q1 2025)."},
		{Name: "orders_prior_to_36_months_q1_25", Type: "INTEGER", Description: "Orders prior to 36 months (Q1 2025)."},
		{Name: "last_order_date_q1_25", Type: "DATE", Description: "Last order date for Q1 2025."},
		{Name: "orders_last_12_months_q2_25", Type: "INTEGER", Description: "Orders in last 12 months (Q2 2025)."},
		{Name: "orders_last_12_to_24_months_q2_25", Type: "INTEGER", Description: "Orders 12 to 24 months back (Q2 2025)."},
		{Name: "orders_last_24_to_36_months_q2_25", Type: "INTEGER", Description: "Orders 24 to 36 months back (Q2 2025)."},
		{Name: "orders_prior_to_36_months_q2_25", Type: "INTEGER", Description: "Orders prior to 36 months (Q2 2025)."},
	}
}
